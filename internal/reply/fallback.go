package reply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/models"
)

// Canned texts for the branches that never reach the formatter.
const (
	GreetingText = "Xin chào! Tôi là trợ lý mua sắm. Tôi có thể giúp bạn tìm sản phẩm, kiểm tra giá, tình trạng hàng. Bạn cần gì?"

	GoodbyeText = "Cảm ơn bạn! Hẹn gặp lại."

	FAQFallbackText = "Bạn có thể tham khảo các câu hỏi thường gặp:\n" +
		"- Chính sách giao hàng\n" +
		"- Phương thức thanh toán\n" +
		"- Chính sách bảo hành và đổi trả\n\n" +
		"Hoặc liên hệ hotline: 1900xxxx để được hỗ trợ trực tiếp."

	UnknownFallbackText = "Tôi có thể giúp bạn tìm sản phẩm, kiểm tra giá, hoặc tình trạng hàng. Bạn muốn tìm gì?"
)

var multiNewline = regexp.MustCompile(`\n{3,}`)

var marker = strings.NewReplacer(
	"INTENT:", "",
	"QUERY:", "",
	"SẢN PHẨM:", "📱",
	"GIÁ:", "💰 Giá:",
	"TÌNH TRẠNG:", "📦",
	"CÁC PHIÊN BẢN:", "✨ Phiên bản:",
)

// PlainText strips the structural markers from a ground-truth block so it
// can be sent to the user directly. Used when the generated candidate is
// rejected: the raw markup must never reach the user.
func PlainText(structured string) string {
	cleaned := marker.Replace(structured)
	cleaned = multiNewline.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

var categoryVietnamese = map[string]string{
	"phone":       "điện thoại",
	"laptop":      "laptop",
	"tablet":      "máy tính bảng",
	"headphone":   "tai nghe",
	"watch":       "đồng hồ",
	"accessories": "phụ kiện",
}

// Fallback is the deterministic conversational render used when the
// narrative formatter is unavailable. With products it lists the top
// results; without, it apologizes and asks for more detail.
func Fallback(it *intent.Intent, products []models.Product) string {
	if len(products) > 0 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Shop tìm thấy %d sản phẩm phù hợp:\n\n", len(products)))

		for _, p := range topThree(products) {
			sb.WriteString("• " + p.Name + " - Giá: " + FormatPrice(p.Price) + "\n")
		}

		sb.WriteString("\nBạn muốn xem thêm thông tin sản phẩm nào không ạ?")
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString("Xin lỗi bạn, hiện tại shop chưa có sản phẩm chính xác như bạn tìm")

	if it.Category != "" {
		name := it.Category
		if vn, ok := categoryVietnamese[strings.ToLower(it.Category)]; ok {
			name = vn
		}
		sb.WriteString(" trong danh mục " + name)
	}
	if it.Brand != "" {
		sb.WriteString(" của thương hiệu " + it.Brand)
	}

	sb.WriteString(".\n\n")
	sb.WriteString("Bạn có thể:\n")
	sb.WriteString("• Cho mình biết ngân sách của bạn khoảng bao nhiêu\n")
	sb.WriteString("• Mô tả chi tiết hơn sản phẩm bạn cần (vd: dùng để làm gì)\n")
	sb.WriteString("• Hỏi về các sản phẩm tương tự khác\n\n")
	sb.WriteString("Mình sẽ tư vấn sản phẩm phù hợp nhất cho bạn! 😊")

	return sb.String()
}
