package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/nhatminh/shopbot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStore is the production Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(config DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

const productColumns = `
	p.id, p.name, p.price,
	COALESCE(p.description, ''), COALESCE(p.thumbnail, ''),
	COALESCE(p.category_id, 0), COALESCE(c.name, '')`

func (s *PostgresStore) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	return s.scanProduct(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE lower(p.name) = lower($1)
		LIMIT 1`

	return s.scanProduct(s.db.QueryRowContext(ctx, query, name))
}

func (s *PostgresStore) FindProductsByNameContains(ctx context.Context, keyword string) ([]models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.name ILIKE '%' || $1 || '%'
		ORDER BY p.id`

	return s.queryProducts(ctx, query, keyword)
}

func (s *PostgresStore) FindProductsByPriceRange(ctx context.Context, min, max float64) ([]models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.price >= $1 AND p.price <= $2
		ORDER BY p.price`

	return s.queryProducts(ctx, query, min, max)
}

func (s *PostgresStore) AllProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.id`

	return s.queryProducts(ctx, query)
}

func (s *PostgresStore) SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.name ILIKE '%' || $1 || '%'
		   OR p.description ILIKE '%' || $1 || '%'
		ORDER BY p.id
		LIMIT $2`

	return s.queryProducts(ctx, query, term, limit)
}

func (s *PostgresStore) FindVariantsByProductID(ctx context.Context, productID int64) ([]models.Variant, error) {
	query := `
		SELECT id, product_id, name, quantity, price
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("error querying variants: %w", err)
	}
	defer rows.Close()

	var variants []models.Variant
	for rows.Next() {
		var (
			v     models.Variant
			price sql.NullFloat64
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Quantity, &price); err != nil {
			return nil, fmt.Errorf("error scanning variant: %w", err)
		}
		if price.Valid {
			v.Price = price.Float64
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *PostgresStore) FindSessionByToken(ctx context.Context, token string) (*models.ChatSession, error) {
	query := `
		SELECT id, session_id, user_id, is_active, created_at, updated_at
		FROM chatbot_sessions
		WHERE session_id = $1`

	var (
		session models.ChatSession
		userID  sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&session.ID, &session.Token, &userID,
		&session.IsActive, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session: %w", err)
	}
	if userID.Valid {
		session.UserID = &userID.Int64
	}
	return &session, nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chatbot_sessions (session_id, user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
			SET is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
		RETURNING id`

	var userID sql.NullInt64
	if session.UserID != nil {
		userID = sql.NullInt64{Int64: *session.UserID, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		session.Token, userID, session.IsActive,
		session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chatbot_messages (session_id, sender, message, product_ids, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		message.SessionID, message.Sender, message.Body,
		message.ProductIDs, message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindMessagesBySession(ctx context.Context, sessionID int64) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, message, COALESCE(product_ids, ''), created_at
		FROM chatbot_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Body, &m.ProductIDs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) SearchFAQByKeyword(ctx context.Context, question string) ([]models.FAQ, error) {
	query := `
		SELECT id, question, answer, COALESCE(category, ''), priority, is_active
		FROM chatbot_faq
		WHERE is_active = TRUE
		  AND (strpos(lower($1), lower(question)) > 0
		    OR strpos(lower(question), lower($1)) > 0
		    OR (category IS NOT NULL AND strpos(lower($1), lower(category)) > 0))
		ORDER BY priority DESC`

	rows, err := s.db.QueryContext(ctx, query, question)
	if err != nil {
		return nil, fmt.Errorf("error querying FAQ: %w", err)
	}
	defer rows.Close()

	var faqs []models.FAQ
	for rows.Next() {
		var f models.FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.Priority, &f.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning FAQ: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

func (s *PostgresStore) ResolveUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, COALESCE(full_name, '') FROM users WHERE id = $1`

	var user models.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Thumbnail, &p.CategoryID, &p.CategoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Thumbnail, &p.CategoryID, &p.CategoryName); err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
