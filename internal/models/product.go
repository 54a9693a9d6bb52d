package models

// Product is a catalog item as stored by the shop. The chatbot only reads
// products, it never mutates them.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Description  string  `json:"description,omitempty"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	CategoryID   int64   `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
}

// Variant is a sellable version of a product (color, storage size...).
// Price of 0 means the variant sells at the product's base price.
type Variant struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

// InStock reports whether at least one unit of the variant is available.
func (v Variant) InStock() bool {
	return v.Quantity > 0
}

// HasOwnPrice reports whether the variant carries its own price.
func (v Variant) HasOwnPrice() bool {
	return v.Price > 0
}
