package intent

import "strings"

// Type is the classified purpose of a user message.
type Type string

const (
	ProductInquiry  Type = "PRODUCT_INQUIRY"
	CheckStock      Type = "CHECK_STOCK"
	CompareProducts Type = "COMPARE_PRODUCTS"
	PriceInquiry    Type = "PRICE_INQUIRY"
	FindByBudget    Type = "FIND_BY_BUDGET"
	FindByCategory  Type = "FIND_BY_CATEGORY"
	FindByBrand     Type = "FIND_BY_BRAND"
	FindBySpecs     Type = "FIND_BY_SPECS"
	Greeting        Type = "GREETING"
	FAQ             Type = "FAQ"
	Goodbye         Type = "GOODBYE"
	Unknown         Type = "UNKNOWN"
)

// RequiresCatalog reports whether this intent needs product data.
func (t Type) RequiresCatalog() bool {
	switch t {
	case ProductInquiry, CheckStock, CompareProducts, PriceInquiry,
		FindByBudget, FindByCategory, FindByBrand, FindBySpecs:
		return true
	}
	return false
}

// Intent is the analyzed form of one user message: its type plus the slots
// extracted from the text. Confidence is advisory only; nothing downstream
// branches on it.
type Intent struct {
	Type            Type
	Confidence      float64
	Keywords        []string
	ProductName     string
	Brand           string
	Category        string
	MinPrice        float64
	MaxPrice        float64
	Storage         string
	RAM             string
	Color           string
	FAQTopic        string
	OriginalMessage string
	NeedsStockCheck bool
	NeedsVariants   bool
	MaxResults      int
}

// AddKeyword appends a lowercased keyword, skipping duplicates.
func (i *Intent) AddKeyword(keyword string) {
	keyword = strings.ToLower(keyword)
	for _, k := range i.Keywords {
		if k == keyword {
			return
		}
	}
	i.Keywords = append(i.Keywords, keyword)
}

// HasPriceFilter reports whether the intent carries a price bound.
func (i *Intent) HasPriceFilter() bool {
	return i.MinPrice > 0 || i.MaxPrice > 0
}

// Describe renders the intent for logging.
func (i *Intent) Describe() string {
	var b strings.Builder
	b.WriteString(string(i.Type))
	if i.ProductName != "" {
		b.WriteString(", product=" + i.ProductName)
	}
	if i.Brand != "" {
		b.WriteString(", brand=" + i.Brand)
	}
	if i.Category != "" {
		b.WriteString(", category=" + i.Category)
	}
	if len(i.Keywords) > 0 {
		b.WriteString(", keywords=" + strings.Join(i.Keywords, ","))
	}
	return b.String()
}
