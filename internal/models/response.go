package models

import "time"

// Request is one incoming chat message. SessionToken and UserID may be
// empty for a fresh, anonymous conversation.
type Request struct {
	SessionToken string `json:"session_id,omitempty"`
	Message      string `json:"message"`
	UserID       *int64 `json:"user_id,omitempty"`
}

// Response is the shaped reply returned to the caller.
type Response struct {
	SessionToken string              `json:"session_id"`
	Message      string              `json:"message"`
	Timestamp    time.Time           `json:"timestamp"`
	Products     []ProductSuggestion `json:"products,omitempty"`
	MessageType  string              `json:"message_type"`
}

// ProductSuggestion is the lightweight product card attached to a reply.
type ProductSuggestion struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Suggestion builds the product card for p.
func Suggestion(p Product) ProductSuggestion {
	return ProductSuggestion{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Thumbnail:   p.Thumbnail,
		Description: p.Description,
	}
}
