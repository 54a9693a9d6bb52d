package storage

import (
	"context"
	"errors"

	"github.com/nhatminh/shopbot/internal/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("storage: not found")

// CatalogStore is the read-only view of the product catalog the chatbot
// queries. Implementations never mutate products.
type CatalogStore interface {
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	// FindProductByName matches the full product name, case-insensitively.
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
	FindProductsByNameContains(ctx context.Context, keyword string) ([]models.Product, error)
	FindProductsByPriceRange(ctx context.Context, min, max float64) ([]models.Product, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	// SearchProducts is a free-text relevance search capped at limit rows.
	SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error)
	FindVariantsByProductID(ctx context.Context, productID int64) ([]models.Variant, error)
}

// SessionStore persists chat sessions and their messages. Messages are
// append-only.
type SessionStore interface {
	FindSessionByToken(ctx context.Context, token string) (*models.ChatSession, error)
	SaveSession(ctx context.Context, session *models.ChatSession) error
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	FindMessagesBySession(ctx context.Context, sessionID int64) ([]models.ChatMessage, error)
}

// FAQStore looks up stored answers for policy questions.
type FAQStore interface {
	SearchFAQByKeyword(ctx context.Context, question string) ([]models.FAQ, error)
}

// UserResolver turns a user ID into an identity record, if one exists.
type UserResolver interface {
	ResolveUser(ctx context.Context, id int64) (*models.User, error)
}

// Store is the full persistence surface the bot wires at startup.
type Store interface {
	CatalogStore
	SessionStore
	FAQStore
	UserResolver
	Close() error
}
