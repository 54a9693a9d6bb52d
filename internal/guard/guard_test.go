package guard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhatminh/shopbot/internal/guard"
)

const source = "INTENT: PRICE_INQUIRY\nQUERY: giá iPhone 15 bao nhiêu\n\n" +
	"SẢN PHẨM: iPhone 15\nGIÁ: 20 triệu\nTÌNH TRẠNG: Còn hàng\n"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{
			name:      "faithful restatement",
			candidate: "Dạ iPhone 15 bên shop đang có giá 20 triệu và còn hàng ạ 😊",
			want:      true,
		},
		{
			name:      "verbatim echo",
			candidate: source,
			want:      true,
		},
		{
			name:      "invented number",
			candidate: "iPhone 15 đang có giá chỉ 18 triệu thôi ạ",
			want:      false,
		},
		{
			name:      "invented product name",
			candidate: "Shop còn có Galaxy Note rất đáng xem, giá 20 triệu",
			want:      false,
		},
		{
			name:      "marketing superlative",
			candidate: "iPhone 15 giá 20 triệu, một sản phẩm tuyệt vời",
			want:      false,
		},
		{
			name:      "promotion wording",
			candidate: "iPhone 15 đang khuyến mãi, giá 20 triệu",
			want:      false,
		},
		{
			name:      "filler closing",
			candidate: "iPhone 15 giá 20 triệu. Chúc bạn một ngày tốt lành!",
			want:      false,
		},
		{
			name:      "over length",
			candidate: "iPhone 15 giá 20 triệu. " + strings.Repeat("ạ ", 300),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.IsValid(source, tt.candidate))
		})
	}
}

func TestCheck_ReportsFailingCheck(t *testing.T) {
	t.Run("numbers", func(t *testing.T) {
		r := guard.Check(source, "Giá chỉ 18 triệu")
		assert.False(t, r.NumbersValid)
		assert.True(t, r.NamesValid)
		assert.False(t, r.Passed)
	})

	t.Run("names", func(t *testing.T) {
		r := guard.Check(source, "Shop gợi ý thêm Galaxy Note nhé, giá 20 triệu")
		assert.True(t, r.NumbersValid)
		assert.False(t, r.NamesValid)
		assert.False(t, r.Passed)
	})

	t.Run("marketing", func(t *testing.T) {
		r := guard.Check(source, "iPhone 15 là siêu phẩm đó ạ, giá 20 triệu")
		assert.False(t, r.MarketingFree)
		assert.False(t, r.Passed)
	})

	t.Run("closing", func(t *testing.T) {
		r := guard.Check(source, "iPhone 15 giá 20 triệu. Nếu cần hỗ trợ thêm cứ nhắn shop")
		assert.False(t, r.ClosingFree)
		assert.False(t, r.Passed)
	})

	t.Run("length", func(t *testing.T) {
		r := guard.Check(source, strings.Repeat("a", guard.MaxResponseLength+1))
		assert.False(t, r.LengthValid)
		assert.False(t, r.Passed)
	})

	t.Run("all pass", func(t *testing.T) {
		r := guard.Check(source, "Dạ iPhone 15 đang có giá 20 triệu ạ")
		assert.True(t, r.NumbersValid)
		assert.True(t, r.NamesValid)
		assert.True(t, r.MarketingFree)
		assert.True(t, r.ClosingFree)
		assert.True(t, r.LengthValid)
		assert.True(t, r.Passed)
	})
}

// "15.0" and "15" are the same fact; "15" and "15000000" are not.
func TestNumberNormalization(t *testing.T) {
	assert.True(t, guard.IsValid("GIÁ: 15.0 triệu", "Giá 15 triệu ạ"))
	assert.False(t, guard.IsValid("GIÁ: 15 triệu", "Giá 15000000 đồng ạ"))
}

// Minor spelling drift in a known product name is tolerated; a different
// name is not.
func TestNameFuzzyMatch(t *testing.T) {
	s := "SẢN PHẨM: Samsung Galaxy S24\nGIÁ: 25 triệu\n"

	assert.True(t, guard.IsValid(s, "Samsung Galaxy S24 đang có giá 25 triệu ạ"))
	assert.True(t, guard.IsValid(s, "Mẫu Samsung Galaxy bên shop giá 25 triệu ạ"))
	assert.False(t, guard.IsValid(s, "Shop có Xiaomi Redmi giá 25 triệu ạ"))
}

func TestEmptyCandidate(t *testing.T) {
	assert.True(t, guard.IsValid(source, ""))
}
