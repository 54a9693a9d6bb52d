package intent

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Fixed vocabulary tables. Built once at init, never mutated.
var (
	greetingPhrases = []string{
		"xin chào", "chào", "hi", "hello", "hey", "chào bạn", "chào shop",
	}

	goodbyePhrases = []string{
		"tạm biệt", "bye", "goodbye", "cảm ơn", "thanks", "thank you", "hẹn gặp lại",
	}

	stockPhrases = []string{
		"còn hàng", "còn không", "còn ko", "có hàng", "available", "in stock", "tình trạng",
	}

	pricePhrases = []string{
		"giá", "bao nhiêu", "giá bao nhiêu", "price", "cost", "giá tiền", "giá cả",
	}

	comparePhrases = []string{
		"so sánh", "khác biệt", "khác gì", "compare", "difference", "phân biệt",
	}

	faqTopics = map[string][]string{
		"shipping": {"giao hàng", "vận chuyển", "ship", "shipping", "delivery"},
		"payment":  {"thanh toán", "payment", "trả tiền", "pay"},
		"warranty": {"bảo hành", "warranty", "đổi trả", "return"},
		"policy":   {"chính sách", "policy", "điều khoản"},
	}

	brands = []string{
		"apple", "samsung", "xiaomi", "oppo", "vivo", "realme", "nokia",
		"dell", "hp", "asus", "lenovo", "acer", "msi", "lg", "sony",
	}

	categorySynonyms = map[string][]string{
		"phone":     {"điện thoại", "phone", "smartphone", "iphone", "mobile", "dòng điện thoại", "dòng máy", "điện thoại di động"},
		"laptop":    {"laptop", "máy tính", "notebook", "macbook", "dòng laptop"},
		"tablet":    {"tablet", "ipad", "máy tính bảng"},
		"headphone": {"tai nghe", "headphone", "earphone", "airpods"},
		"watch":     {"đồng hồ", "watch", "smartwatch"},
	}

	stopwords = map[string]struct{}{
		"tôi": {}, "tớ": {}, "mình": {}, "cho": {}, "của": {}, "và": {},
		"có": {}, "không": {}, "được": {}, "là": {}, "thì": {}, "như": {},
		"để": {}, "bạn": {}, "anh": {}, "chị": {}, "em": {}, "shop": {},
		"xem": {}, "tìm": {}, "muốn": {}, "cần": {}, "giúp": {}, "với": {},
		"về": {}, "nào": {}, "gì": {}, "thế": {}, "sao": {}, "à": {},
		"ạ": {}, "nhé": {}, "nha": {},
	}

	storagePattern = regexp.MustCompile(`(?i)(\d+)\s*(gb|tb)`)
	ramPattern     = regexp.MustCompile(`(?i)(\d+)\s*gb\s*ram`)
	pricePattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(triệu|trieu|tr|million|k)`)

	// Keeps letters (including Vietnamese) and digits, drops the rest.
	wordCleaner = regexp.MustCompile(`[^a-zA-Z0-9àáạảãâầấậẩẫăằắặẳẵèéẹẻẽêềếệểễìíịỉĩòóọỏõôồốộổỗơờớợởỡùúụủũưừứựửữỳýỵỷỹđ]`)
)

// Detector maps free text to an Intent with pattern and keyword matching
// only. No model, no network calls.
type Detector struct {
	logger *zap.Logger
}

func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect classifies one message. It never fails: unparseable input comes
// back as Unknown with confidence 0.
func (d *Detector) Detect(message string) *Intent {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return &Intent{Type: Unknown, Confidence: 0, OriginalMessage: message, MaxResults: defaultMaxResults}
	}

	lower := strings.ToLower(trimmed)
	words := wordSet(lower)

	it := &Intent{
		Type:            Unknown,
		OriginalMessage: message,
		MaxResults:      defaultMaxResults,
	}

	// Exact-precedence checks first: greeting beats goodbye beats FAQ.
	if matchesAny(lower, words, greetingPhrases) {
		it.Type = Greeting
		it.Confidence = 1.0
		d.log(it)
		return it
	}

	if matchesAny(lower, words, goodbyePhrases) {
		it.Type = Goodbye
		it.Confidence = 1.0
		d.log(it)
		return it
	}

	if topic := matchFAQTopic(lower, words); topic != "" {
		it.Type = FAQ
		it.Confidence = 0.9
		it.FAQTopic = topic
		d.log(it)
		return it
	}

	// Slot extraction.
	it.Brand = extractBrand(lower)
	it.Category = extractCategory(lower, words)
	it.Storage = extractStorage(lower)
	it.RAM = extractRAM(lower)
	it.MaxPrice = extractMaxPrice(lower)
	it.Keywords = extractKeywords(lower)

	// Decision ladder, most specific phrasing first.
	switch {
	case matchesAny(lower, words, comparePhrases):
		it.Type = CompareProducts
		it.Confidence = 0.9

	case matchesAny(lower, words, stockPhrases):
		it.Type = CheckStock
		it.Confidence = 0.95
		it.NeedsStockCheck = true
		it.NeedsVariants = true

	case matchesAny(lower, words, pricePhrases) &&
		!strings.Contains(lower, "dưới") && !strings.Contains(lower, "trên"):
		it.Type = PriceInquiry
		it.Confidence = 0.9

	case it.MaxPrice > 0 || strings.Contains(lower, "dưới") ||
		strings.Contains(lower, "từ") || strings.Contains(lower, "khoảng"):
		it.Type = FindByBudget
		it.Confidence = 0.85

	case it.Brand != "" && it.Category == "":
		it.Type = FindByBrand
		it.Confidence = 0.8

	case it.Category != "" && len(it.Keywords) == 0:
		it.Type = FindByCategory
		it.Confidence = 0.8

	case it.Storage != "" || it.RAM != "":
		it.Type = FindBySpecs
		it.Confidence = 0.75

	case len(it.Keywords) > 0 || it.Brand != "" || it.Category != "":
		it.Type = ProductInquiry
		it.Confidence = 0.7

	default:
		it.Type = Unknown
		it.Confidence = 0.5
	}

	it.ProductName = extractProductName(message, it.Keywords)

	d.log(it)
	return it
}

const defaultMaxResults = 5

func (d *Detector) log(it *Intent) {
	d.logger.Debug("intent detected",
		zap.String("type", string(it.Type)),
		zap.Float64("confidence", it.Confidence),
		zap.String("detail", it.Describe()))
}

// wordSet tokenizes the lowered message into cleaned words. Single-word
// vocabulary entries are matched against it so that "hi" does not fire
// inside "bao nhiêu".
func wordSet(message string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(message) {
		w = wordCleaner.ReplaceAllString(w, "")
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return words
}

func matchesAny(message string, words map[string]struct{}, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(p, " ") {
			if strings.Contains(message, p) {
				return true
			}
			continue
		}
		if _, ok := words[p]; ok {
			return true
		}
	}
	return false
}

func matchFAQTopic(message string, words map[string]struct{}) string {
	for topic, phrases := range faqTopics {
		if matchesAny(message, words, phrases) {
			return topic
		}
	}
	return ""
}

func extractBrand(message string) string {
	for _, brand := range brands {
		if strings.Contains(message, brand) {
			return strings.ToUpper(brand[:1]) + brand[1:]
		}
	}
	return ""
}

func extractCategory(message string, words map[string]struct{}) string {
	for category, synonyms := range categorySynonyms {
		if matchesAny(message, words, synonyms) {
			return category
		}
	}
	return ""
}

func extractStorage(message string) string {
	m := storagePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1] + strings.ToUpper(m[2])
}

func extractRAM(message string) string {
	m := ramPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1] + "GB"
}

// extractMaxPrice converts budget phrasing like "15 triệu" or "500k" into
// absolute currency units. Returns 0 when the message names no budget.
func extractMaxPrice(message string) float64 {
	for _, m := range pricePattern.FindAllStringSubmatch(message, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch unit := strings.ToLower(m[2]); {
		case strings.Contains(unit, "triệu"), strings.Contains(unit, "trieu"), unit == "tr":
			return value * 1_000_000
		case unit == "k":
			return value * 1_000
		}
	}
	return 0
}

func extractKeywords(message string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(message)) {
		word = wordCleaner.ReplaceAllString(word, "")
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// extractProductName rebuilds a product-name guess from the original
// message: the words whose cleaned form survived keyword extraction, in
// order, when at least two of them did.
func extractProductName(message string, keywords []string) string {
	if len(keywords) < 2 {
		return ""
	}

	keywordSet := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		keywordSet[k] = struct{}{}
	}

	var parts []string
	for _, word := range strings.Fields(message) {
		cleaned := wordCleaner.ReplaceAllString(strings.ToLower(word), "")
		if _, ok := keywordSet[cleaned]; ok {
			parts = append(parts, word)
		}
	}

	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts, " ")
}
