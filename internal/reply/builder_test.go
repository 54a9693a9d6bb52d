package reply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/reply"
	"github.com/nhatminh/shopbot/internal/storage"
)

func newTestBuilder(store *storage.MemoryStore) *reply.Builder {
	return reply.NewBuilder(store, zap.NewNop())
}

func TestBuildStructuredResponse_NoMatch(t *testing.T) {
	b := newTestBuilder(storage.NewMemoryStore())

	it := &intent.Intent{
		Type:            intent.CheckStock,
		Brand:           "Samsung",
		Category:        "phone",
		Keywords:        []string{"samsung"},
		MaxPrice:        15_000_000,
		Storage:         "256GB",
		OriginalMessage: "samsung 256GB còn hàng không",
	}

	got, err := b.BuildStructuredResponse(context.Background(), it, nil)
	require.NoError(t, err)

	assert.True(t, len(got) > 0)
	assert.Contains(t, got, "CONTEXT:")
	assert.Contains(t, got, "HÃY TRẢ LỜI TỰ NHIÊN:")
	assert.Contains(t, got, "- Thương hiệu: Samsung")
	assert.Contains(t, got, "- Danh mục: phone")
	assert.Contains(t, got, "- Ngân sách tối đa: 15 triệu")
	assert.Contains(t, got, "- Dung lượng: 256GB")
	// The no-match block never names a substitute product.
	assert.NotContains(t, got, "SẢN PHẨM:")
}

func TestBuildStructuredResponse_StockCheck(t *testing.T) {
	store := storage.NewMemoryStore()
	id := store.AddProduct(models.Product{Name: "iPhone 15", Price: 20_000_000})
	store.AddVariant(models.Variant{ProductID: id, Name: "128GB", Quantity: 5})
	store.AddVariant(models.Variant{ProductID: id, Name: "256GB", Quantity: 0})
	soldOutID := store.AddProduct(models.Product{Name: "Nokia 105", Price: 500_000})

	b := newTestBuilder(store)
	it := &intent.Intent{Type: intent.CheckStock, OriginalMessage: "iPhone 15 còn hàng không"}

	got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
		{ID: id, Name: "iPhone 15", Price: 20_000_000},
		{ID: soldOutID, Name: "Nokia 105", Price: 500_000},
	})
	require.NoError(t, err)

	assert.Contains(t, got, "INTENT: CHECK_STOCK")
	assert.Contains(t, got, "SẢN PHẨM: iPhone 15")
	assert.Contains(t, got, "GIÁ: 20 triệu")
	assert.Contains(t, got, "CÁC PHIÊN BẢN:")
	assert.Contains(t, got, "- 128GB: Còn 5 sản phẩm")
	assert.Contains(t, got, "- 256GB: Hết hàng")
	// A product without variants is reported as sold out.
	assert.Contains(t, got, "TÌNH TRẠNG: Hết hàng")
}

func TestBuildStructuredResponse_PriceInquiry(t *testing.T) {
	t.Run("variant breakdown only when prices diverge", func(t *testing.T) {
		store := storage.NewMemoryStore()
		id := store.AddProduct(models.Product{Name: "iPhone 15", Price: 20_000_000})
		store.AddVariant(models.Variant{ProductID: id, Name: "128GB", Quantity: 5, Price: 20_000_000})
		store.AddVariant(models.Variant{ProductID: id, Name: "256GB", Quantity: 3, Price: 23_000_000})

		b := newTestBuilder(store)
		it := &intent.Intent{Type: intent.PriceInquiry, OriginalMessage: "giá iPhone 15"}

		got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
			{ID: id, Name: "iPhone 15", Price: 20_000_000},
		})
		require.NoError(t, err)

		assert.Contains(t, got, "GIÁ: 20 triệu")
		assert.Contains(t, got, "CÁC PHIÊN BẢN:")
		assert.Contains(t, got, "- 256GB: 23 triệu")
	})

	t.Run("uniform price omits the breakdown", func(t *testing.T) {
		store := storage.NewMemoryStore()
		id := store.AddProduct(models.Product{Name: "iPhone 15", Price: 20_000_000})
		store.AddVariant(models.Variant{ProductID: id, Name: "128GB", Quantity: 5})

		b := newTestBuilder(store)
		it := &intent.Intent{Type: intent.PriceInquiry, OriginalMessage: "giá iPhone 15"}

		got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
			{ID: id, Name: "iPhone 15", Price: 20_000_000},
		})
		require.NoError(t, err)

		assert.Contains(t, got, "GIÁ: 20 triệu")
		assert.NotContains(t, got, "CÁC PHIÊN BẢN:")
	})
}

func TestBuildStructuredResponse_Comparison(t *testing.T) {
	b := newTestBuilder(storage.NewMemoryStore())
	it := &intent.Intent{Type: intent.CompareProducts, OriginalMessage: "so sánh iPhone 15 và Samsung S24"}

	t.Run("two products", func(t *testing.T) {
		got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
			{ID: 1, Name: "iPhone 15", Price: 20_000_000, Description: "Điện thoại Apple"},
			{ID: 2, Name: "Samsung S24", Price: 25_000_000},
		})
		require.NoError(t, err)

		assert.Contains(t, got, "SO SÁNH SẢN PHẨM:")
		assert.Contains(t, got, "1. iPhone 15")
		assert.Contains(t, got, "2. Samsung S24")
		assert.Contains(t, got, "CHÊNH LỆCH GIÁ: 5 triệu")
		assert.Contains(t, got, "→ iPhone 15 rẻ hơn")
	})

	t.Run("one product cannot be compared", func(t *testing.T) {
		got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
			{ID: 1, Name: "iPhone 15", Price: 20_000_000},
		})
		require.NoError(t, err)
		assert.Contains(t, got, "Cần ít nhất 2 sản phẩm để so sánh.")
	})
}

func TestBuildStructuredResponse_BudgetListing(t *testing.T) {
	store := storage.NewMemoryStore()
	var products []models.Product
	for _, seed := range []models.Product{
		{Name: "Redmi Note 13", Price: 5_000_000},
		{Name: "Galaxy A55", Price: 9_000_000},
		{Name: "iPhone 13", Price: 12_000_000},
		{Name: "Pixel 8a", Price: 13_000_000},
	} {
		seed.ID = store.AddProduct(seed)
		products = append(products, seed)
	}
	store.AddVariant(models.Variant{ProductID: products[0].ID, Name: "8GB/256GB", Quantity: 2})

	b := newTestBuilder(store)
	it := &intent.Intent{
		Type:            intent.FindByBudget,
		MaxPrice:        15_000_000,
		OriginalMessage: "điện thoại dưới 15 triệu",
	}

	got, err := b.BuildStructuredResponse(context.Background(), it, products)
	require.NoError(t, err)

	assert.Contains(t, got, "CÁC SẢN PHẨM TRONG NGÂN SÁCH DƯỚI 15 triệu:")
	assert.Contains(t, got, "1. Redmi Note 13")
	assert.Contains(t, got, "- Tình trạng: Còn hàng")
	assert.Contains(t, got, "- Tình trạng: Hết hàng")
	assert.Contains(t, got, "3. iPhone 13")
	// Only the top three make the listing.
	assert.NotContains(t, got, "Pixel 8a")
}

func TestBuildStructuredResponse_GenericListingVariants(t *testing.T) {
	store := storage.NewMemoryStore()
	id := store.AddProduct(models.Product{Name: "iPhone 15", Price: 20_000_000})
	store.AddVariant(models.Variant{ProductID: id, Name: "128GB", Quantity: 5})
	store.AddVariant(models.Variant{ProductID: id, Name: "256GB", Quantity: 2})
	store.AddVariant(models.Variant{ProductID: id, Name: "512GB", Quantity: 1})

	b := newTestBuilder(store)
	it := &intent.Intent{
		Type:            intent.ProductInquiry,
		NeedsVariants:   true,
		NeedsStockCheck: true,
		OriginalMessage: "iphone 15",
	}

	got, err := b.BuildStructuredResponse(context.Background(), it, []models.Product{
		{ID: id, Name: "iPhone 15", Price: 20_000_000},
	})
	require.NoError(t, err)

	assert.Contains(t, got, "TÌM THẤY 1 SẢN PHẨM PHÙ HỢP:")
	assert.Contains(t, got, "- Phiên bản: 128GB, 256GB...")
	assert.NotContains(t, got, "512GB")
	assert.Contains(t, got, "- Tình trạng: Còn hàng")
}

func TestPlainText(t *testing.T) {
	structured := "INTENT: PRICE_INQUIRY\nQUERY: giá iPhone 15\n\n" +
		"SẢN PHẨM: iPhone 15\nGIÁ: 20 triệu\nTÌNH TRẠNG: Còn hàng\n\n\n\nCÁC PHIÊN BẢN:\n  - 128GB: 20 triệu\n"

	got := reply.PlainText(structured)

	assert.NotContains(t, got, "INTENT:")
	assert.NotContains(t, got, "QUERY:")
	assert.NotContains(t, got, "SẢN PHẨM:")
	assert.Contains(t, got, "📱 iPhone 15")
	assert.Contains(t, got, "💰 Giá: 20 triệu")
	assert.Contains(t, got, "📦 Còn hàng")
	assert.Contains(t, got, "✨ Phiên bản:")
	assert.NotContains(t, got, "\n\n\n")
}

func TestFallback(t *testing.T) {
	t.Run("with products", func(t *testing.T) {
		it := &intent.Intent{Type: intent.ProductInquiry}
		got := reply.Fallback(it, []models.Product{
			{Name: "iPhone 15", Price: 20_000_000},
			{Name: "iPhone 14", Price: 15_000_000},
		})

		assert.Contains(t, got, "Shop tìm thấy 2 sản phẩm phù hợp:")
		assert.Contains(t, got, "• iPhone 15 - Giá: 20 triệu")
		assert.Contains(t, got, "• iPhone 14 - Giá: 15 triệu")
	})

	t.Run("without products", func(t *testing.T) {
		it := &intent.Intent{Type: intent.FindByBrand, Brand: "Samsung", Category: "phone"}
		got := reply.Fallback(it, nil)

		assert.Contains(t, got, "Xin lỗi bạn")
		assert.Contains(t, got, "danh mục điện thoại")
		assert.Contains(t, got, "thương hiệu Samsung")
		assert.Contains(t, got, "ngân sách")
	})
}
