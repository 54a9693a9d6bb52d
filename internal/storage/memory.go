package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nhatminh/shopbot/internal/models"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
	variants map[int64][]models.Variant
	sessions map[string]*models.ChatSession
	messages []models.ChatMessage
	faqs     []models.FAQ
	users    map[int64]models.User

	nextProductID int64
	nextSessionID int64
	nextMessageID int64
	nextFAQID     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		variants: make(map[int64][]models.Variant),
		sessions: make(map[string]*models.ChatSession),
		users:    make(map[int64]models.User),
	}
}

// AddProduct seeds a product and returns its assigned ID.
func (s *MemoryStore) AddProduct(p models.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	p.ID = s.nextProductID
	s.products = append(s.products, p)
	return p.ID
}

// AddVariant seeds a variant for an existing product.
func (s *MemoryStore) AddVariant(v models.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.ID = int64(len(s.variants[v.ProductID]) + 1)
	s.variants[v.ProductID] = append(s.variants[v.ProductID], v)
}

// AddFAQ seeds a stored answer.
func (s *MemoryStore) AddFAQ(f models.FAQ) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFAQID++
	f.ID = s.nextFAQID
	s.faqs = append(s.faqs, f)
}

// AddUser seeds an identity record.
func (s *MemoryStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
}

func (s *MemoryStore) FindProductByID(_ context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindProductByName(_ context.Context, name string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindProductsByNameContains(_ context.Context, keyword string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	var matches []models.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), keyword) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *MemoryStore) FindProductsByPriceRange(_ context.Context, min, max float64) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Product
	for _, p := range s.products {
		if p.Price >= min && p.Price <= max {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *MemoryStore) AllProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Product, len(s.products))
	copy(all, s.products)
	return all, nil
}

// SearchProducts matches products whose name or description mentions any
// token of the search term.
func (s *MemoryStore) SearchProducts(_ context.Context, term string, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 {
		return nil, nil
	}

	var matches []models.Product
	for _, p := range s.products {
		haystack := strings.ToLower(p.Name + " " + p.Description)
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				matches = append(matches, p)
				break
			}
		}
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

func (s *MemoryStore) FindVariantsByProductID(_ context.Context, productID int64) ([]models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	variants := make([]models.Variant, len(s.variants[productID]))
	copy(variants, s.variants[productID])
	return variants, nil
}

func (s *MemoryStore) FindSessionByToken(_ context.Context, token string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if session, ok := s.sessions[token]; ok {
		found := *session
		return &found, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SaveSession(_ context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == 0 {
		s.nextSessionID++
		session.ID = s.nextSessionID
	}
	stored := *session
	s.sessions[session.Token] = &stored
	return nil
}

func (s *MemoryStore) SaveMessage(_ context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMessageID++
	message.ID = s.nextMessageID
	s.messages = append(s.messages, *message)
	return nil
}

func (s *MemoryStore) FindMessagesBySession(_ context.Context, sessionID int64) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []models.ChatMessage
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s *MemoryStore) SearchFAQByKeyword(_ context.Context, question string) ([]models.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(question)
	var matches []models.FAQ
	for _, f := range s.faqs {
		if !f.IsActive {
			continue
		}
		if strings.Contains(lower, strings.ToLower(f.Question)) ||
			strings.Contains(strings.ToLower(f.Question), lower) ||
			(f.Category != "" && strings.Contains(lower, strings.ToLower(f.Category))) {
			matches = append(matches, f)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority > matches[j].Priority
	})
	return matches, nil
}

func (s *MemoryStore) ResolveUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Close() error {
	return nil
}
