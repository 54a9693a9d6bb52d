package reply

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/storage"
)

const comparisonDescriptionLimit = 100

// Builder renders an intent and its retrieved products into the structured
// ground-truth text handed to the narrative formatter. Everything in the
// output comes from the catalog; nothing is invented here.
type Builder struct {
	store  storage.CatalogStore
	logger *zap.Logger
}

func NewBuilder(store storage.CatalogStore, logger *zap.Logger) *Builder {
	return &Builder{store: store, logger: logger}
}

// BuildStructuredResponse assembles the fact block for one exchange.
// An empty product list yields the no-match context block instead.
func (b *Builder) BuildStructuredResponse(ctx context.Context, it *intent.Intent, products []models.Product) (string, error) {
	if len(products) == 0 {
		return b.buildNoMatchContext(it), nil
	}

	var sb strings.Builder
	sb.WriteString("INTENT: " + string(it.Type) + "\n")
	sb.WriteString("QUERY: " + it.OriginalMessage + "\n\n")

	var (
		body string
		err  error
	)
	switch it.Type {
	case intent.CheckStock:
		body, err = b.buildStockCheck(ctx, products)
	case intent.PriceInquiry:
		body, err = b.buildPriceInquiry(ctx, products)
	case intent.CompareProducts:
		body = buildComparison(products)
	case intent.FindByBudget:
		body, err = b.buildBudgetListing(ctx, it, products)
	default:
		body, err = b.buildGenericListing(ctx, it, products)
	}
	if err != nil {
		return "", err
	}
	sb.WriteString(body)

	b.logger.Debug("structured response built",
		zap.String("intent", string(it.Type)),
		zap.Int("products", len(products)),
		zap.Int("chars", sb.Len()))

	return sb.String(), nil
}

// buildNoMatchContext enumerates what was searched for and instructs the
// formatter how to apologize and redirect. It names no substitute product.
func (b *Builder) buildNoMatchContext(it *intent.Intent) string {
	var sb strings.Builder

	sb.WriteString("CONTEXT: Khách hàng tìm kiếm nhưng không có sản phẩm khớp chính xác.\n\n")
	sb.WriteString("THÔNG TIN TÌM KIẾM:\n")

	if it.ProductName != "" {
		sb.WriteString("- Tên sản phẩm: " + it.ProductName + "\n")
	}
	if it.Category != "" {
		sb.WriteString("- Danh mục: " + it.Category + "\n")
	}
	if it.Brand != "" {
		sb.WriteString("- Thương hiệu: " + it.Brand + "\n")
	}
	if len(it.Keywords) > 0 {
		sb.WriteString("- Từ khóa: " + strings.Join(it.Keywords, ", ") + "\n")
	}
	if it.MaxPrice > 0 {
		sb.WriteString("- Ngân sách tối đa: " + FormatPrice(it.MaxPrice) + "\n")
	}
	if it.Storage != "" {
		sb.WriteString("- Dung lượng: " + it.Storage + "\n")
	}

	sb.WriteString("\nHÃY TRẢ LỜI TỰ NHIÊN:\n")
	sb.WriteString("- Xin lỗi khách vì không tìm thấy sản phẩm chính xác\n")
	sb.WriteString("- Gợi ý 2-3 hướng thay thế (hỏi thêm về ngân sách, thương hiệu, hoặc mục đích sử dụng)\n")
	sb.WriteString("- Giữ giọng điệu thân thiện, như nhân viên tư vấn thực\n")
	sb.WriteString("- KHÔNG liệt kê dạng bullet points, hãy nói như trò chuyện bình thường\n")

	return sb.String()
}

func (b *Builder) buildStockCheck(ctx context.Context, products []models.Product) (string, error) {
	var sb strings.Builder

	for _, p := range products {
		sb.WriteString("SẢN PHẨM: " + p.Name + "\n")
		sb.WriteString("GIÁ: " + FormatPrice(p.Price) + "\n")

		variants, err := b.store.FindVariantsByProductID(ctx, p.ID)
		if err != nil {
			return "", fmt.Errorf("variants of %d: %w", p.ID, err)
		}

		if len(variants) == 0 {
			sb.WriteString("TÌNH TRẠNG: Hết hàng\n")
		} else {
			sb.WriteString("CÁC PHIÊN BẢN:\n")
			for _, v := range variants {
				sb.WriteString("  - " + v.Name + ": ")
				if v.InStock() {
					sb.WriteString(fmt.Sprintf("Còn %d sản phẩm\n", v.Quantity))
				} else {
					sb.WriteString("Hết hàng\n")
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// buildPriceInquiry lists base prices, with a per-variant breakdown only
// when some variant sells at a different price.
func (b *Builder) buildPriceInquiry(ctx context.Context, products []models.Product) (string, error) {
	var sb strings.Builder

	for _, p := range products {
		sb.WriteString("SẢN PHẨM: " + p.Name + "\n")
		sb.WriteString("GIÁ: " + FormatPrice(p.Price) + "\n")

		variants, err := b.store.FindVariantsByProductID(ctx, p.ID)
		if err != nil {
			return "", fmt.Errorf("variants of %d: %w", p.ID, err)
		}

		diverges := false
		for _, v := range variants {
			if v.HasOwnPrice() && v.Price != p.Price {
				diverges = true
				break
			}
		}

		if diverges {
			sb.WriteString("CÁC PHIÊN BẢN:\n")
			for _, v := range variants {
				if v.HasOwnPrice() {
					sb.WriteString("  - " + v.Name + ": " + FormatPrice(v.Price) + "\n")
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func buildComparison(products []models.Product) string {
	if len(products) < 2 {
		return "Cần ít nhất 2 sản phẩm để so sánh.\n"
	}

	p1, p2 := products[0], products[1]

	var sb strings.Builder
	sb.WriteString("SO SÁNH SẢN PHẨM:\n\n")

	sb.WriteString("1. " + p1.Name + "\n")
	sb.WriteString("   - Giá: " + FormatPrice(p1.Price) + "\n")
	if p1.Description != "" {
		sb.WriteString("   - Mô tả: " + truncate(p1.Description, comparisonDescriptionLimit) + "...\n")
	}
	sb.WriteString("\n")

	sb.WriteString("2. " + p2.Name + "\n")
	sb.WriteString("   - Giá: " + FormatPrice(p2.Price) + "\n")
	if p2.Description != "" {
		sb.WriteString("   - Mô tả: " + truncate(p2.Description, comparisonDescriptionLimit) + "...\n")
	}
	sb.WriteString("\n")

	diff := p1.Price - p2.Price
	if diff < 0 {
		diff = -diff
	}
	sb.WriteString("CHÊNH LỆCH GIÁ: " + FormatPrice(diff) + "\n")

	if p1.Price < p2.Price {
		sb.WriteString("→ " + p1.Name + " rẻ hơn\n")
	} else {
		sb.WriteString("→ " + p2.Name + " rẻ hơn\n")
	}

	return sb.String()
}

func (b *Builder) buildBudgetListing(ctx context.Context, it *intent.Intent, products []models.Product) (string, error) {
	var sb strings.Builder

	sb.WriteString("CÁC SẢN PHẨM TRONG NGÂN SÁCH ")
	if it.MaxPrice > 0 {
		sb.WriteString("DƯỚI " + FormatPrice(it.MaxPrice))
	}
	sb.WriteString(":\n\n")

	for i, p := range topThree(products) {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Name))
		sb.WriteString("   - Giá: " + FormatPrice(p.Price) + "\n")

		inStock, err := b.hasStock(ctx, p.ID)
		if err != nil {
			return "", err
		}
		sb.WriteString("   - Tình trạng: " + stockLabel(inStock) + "\n\n")
	}

	return sb.String(), nil
}

func (b *Builder) buildGenericListing(ctx context.Context, it *intent.Intent, products []models.Product) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("TÌM THẤY %d SẢN PHẨM PHÙ HỢP:\n\n", len(products)))

	for i, p := range topThree(products) {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Name))
		sb.WriteString("   - Giá: " + FormatPrice(p.Price) + "\n")

		if it.NeedsVariants {
			variants, err := b.store.FindVariantsByProductID(ctx, p.ID)
			if err != nil {
				return "", fmt.Errorf("variants of %d: %w", p.ID, err)
			}
			if len(variants) > 0 {
				sb.WriteString("   - Phiên bản: ")
				shown := len(variants)
				if shown > 2 {
					shown = 2
				}
				names := make([]string, 0, shown)
				for _, v := range variants[:shown] {
					names = append(names, v.Name)
				}
				sb.WriteString(strings.Join(names, ", "))
				if len(variants) > 2 {
					sb.WriteString("...")
				}
				sb.WriteString("\n")
			}
		}

		if it.NeedsStockCheck {
			inStock, err := b.hasStock(ctx, p.ID)
			if err != nil {
				return "", err
			}
			sb.WriteString("   - Tình trạng: " + stockLabel(inStock) + "\n")
		}

		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (b *Builder) hasStock(ctx context.Context, productID int64) (bool, error) {
	variants, err := b.store.FindVariantsByProductID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("variants of %d: %w", productID, err)
	}
	for _, v := range variants {
		if v.InStock() {
			return true, nil
		}
	}
	return false, nil
}

func stockLabel(inStock bool) string {
	if inStock {
		return "Còn hàng"
	}
	return "Hết hàng"
}

func topThree(products []models.Product) []models.Product {
	if len(products) > 3 {
		return products[:3]
	}
	return products
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
