package models

import "time"

// Message sender roles.
const (
	SenderUser = "USER"
	SenderBot  = "BOT"
)

// Message type tags on the outgoing payload.
const (
	MessageTypeText        = "text"
	MessageTypeProductList = "product_list"
	MessageTypeHistory     = "history"
)

// ChatSession groups the messages of one conversation. Guests have no
// UserID. Sessions are never deleted here; archival is handled elsewhere.
type ChatSession struct {
	ID        int64     `json:"id"`
	Token     string    `json:"session_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one line of a conversation. Append-only.
// ProductIDs is a comma-joined list of product IDs the bot referenced.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Sender     string    `json:"sender"`
	Body       string    `json:"message"`
	ProductIDs string    `json:"product_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FAQ is a stored answer for policy questions (shipping, payment, warranty).
type FAQ struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority"`
	IsActive bool   `json:"is_active"`
}

// User is the identity record attached to a session when the caller is
// logged in.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name,omitempty"`
}
