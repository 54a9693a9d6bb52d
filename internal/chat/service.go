// Package chat sequences the pipeline for one message: classify, query,
// assemble facts, delegate prose to the formatter, verify, persist, respond.
// A technical failure anywhere past persistence still produces a
// conversational reply; only storage errors surface to the caller.
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/catalog"
	"github.com/nhatminh/shopbot/internal/guard"
	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/llm"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/reply"
	"github.com/nhatminh/shopbot/internal/storage"
)

// Options tunes orchestration behavior.
type Options struct {
	// Bounds of the cosmetic typing delay applied before processing.
	// MaxReplyDelay of 0 disables the delay entirely.
	MinReplyDelay time.Duration
	MaxReplyDelay time.Duration
}

// Service owns session and message creation and drives the pipeline.
type Service struct {
	sessions  storage.SessionStore
	faqs      storage.FAQStore
	users     storage.UserResolver
	detector  *intent.Detector
	planner   *catalog.Planner
	builder   *reply.Builder
	formatter llm.Formatter
	logger    *zap.Logger
	opts      Options
}

func NewService(
	sessions storage.SessionStore,
	faqs storage.FAQStore,
	users storage.UserResolver,
	detector *intent.Detector,
	planner *catalog.Planner,
	builder *reply.Builder,
	formatter llm.Formatter,
	logger *zap.Logger,
	opts Options,
) *Service {
	return &Service{
		sessions:  sessions,
		faqs:      faqs,
		users:     users,
		detector:  detector,
		planner:   planner,
		builder:   builder,
		formatter: formatter,
		logger:    logger,
		opts:      opts,
	}
}

// ProcessMessage runs one full pass. It persists exactly one USER and one
// BOT message whichever branch executes.
func (s *Service) ProcessMessage(ctx context.Context, req models.Request) (*models.Response, error) {
	s.typingDelay()

	session, err := s.getOrCreateSession(ctx, req.SessionToken, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if err := s.saveMessage(ctx, session.ID, models.SenderUser, req.Message, nil); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	it := s.detector.Detect(req.Message)
	s.logger.Info("message classified",
		zap.String("session", session.Token),
		zap.String("intent", it.Describe()),
		zap.Float64("confidence", it.Confidence))

	var (
		text     string
		products []models.Product
	)

	switch it.Type {
	case intent.Greeting:
		text = reply.GreetingText
	case intent.Goodbye:
		text = reply.GoodbyeText
	case intent.FAQ:
		text = s.answerFAQ(ctx, req.Message)
	case intent.Unknown:
		text = s.answerOpenDomain(ctx, req.Message)
	default:
		text, products, err = s.answerProductIntent(ctx, it)
		if err != nil {
			return nil, err
		}
	}

	if err := s.saveMessage(ctx, session.ID, models.SenderBot, text, products); err != nil {
		return nil, fmt.Errorf("save bot message: %w", err)
	}

	return shapeResponse(session.Token, text, products), nil
}

// answerProductIntent is the data path: query, assemble, format, verify.
// Formatter and guard failures degrade to deterministic renders; only
// store errors propagate.
func (s *Service) answerProductIntent(ctx context.Context, it *intent.Intent) (string, []models.Product, error) {
	products, err := s.planner.FindProducts(ctx, it)
	if err != nil {
		return "", nil, fmt.Errorf("find products: %w", err)
	}

	structured, err := s.builder.BuildStructuredResponse(ctx, it, products)
	if err != nil {
		return "", nil, fmt.Errorf("build structured response: %w", err)
	}

	formatted, err := s.formatter.Format(ctx, llm.RestatePrompt(structured))
	if err != nil {
		s.logger.Warn("formatter unavailable, using fallback render", zap.Error(err))
		return reply.Fallback(it, products), products, nil
	}

	// A candidate still carrying the structural headers means the model
	// echoed the context instead of restating it.
	if strings.HasPrefix(formatted, "CONTEXT:") || strings.Contains(formatted, "HÃY TRẢ LỜI TỰ NHIÊN:") {
		s.logger.Warn("formatter echoed context, using fallback render")
		return reply.Fallback(it, products), products, nil
	}

	if report := guard.Check(structured, formatted); !report.Passed {
		s.logger.Warn("candidate rejected by fidelity guard",
			zap.Bool("numbers", report.NumbersValid),
			zap.Bool("names", report.NamesValid),
			zap.Bool("marketing", report.MarketingFree),
			zap.Bool("closing", report.ClosingFree),
			zap.Bool("length", report.LengthValid))
		return reply.PlainText(structured), products, nil
	}

	return formatted, products, nil
}

func (s *Service) answerFAQ(ctx context.Context, question string) string {
	faqs, err := s.faqs.SearchFAQByKeyword(ctx, question)
	if err != nil {
		s.logger.Warn("FAQ lookup failed", zap.Error(err))
		return reply.FAQFallbackText
	}
	if len(faqs) > 0 {
		return faqs[0].Answer
	}
	return reply.FAQFallbackText
}

// answerOpenDomain handles messages with no shopping intent. There is no
// ground truth here, so the guard does not apply.
func (s *Service) answerOpenDomain(ctx context.Context, question string) string {
	text, err := s.formatter.Format(ctx, llm.OpenDomainPrompt(question))
	if err != nil {
		s.logger.Warn("open-domain completion failed", zap.Error(err))
		return reply.UnknownFallbackText
	}
	return text
}

// CreateSession opens a fresh session, optionally bound to a known user.
func (s *Service) CreateSession(ctx context.Context, userID *int64) (string, error) {
	session, err := s.newSession(ctx, userID)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// History returns the session transcript in creation order.
func (s *Service) History(ctx context.Context, token string) (*models.Response, error) {
	session, err := s.sessions.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find session %q: %w", token, err)
	}

	messages, err := s.sessions.FindMessagesBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Sender + ": " + m.Body + "\n")
	}

	return &models.Response{
		SessionToken: token,
		Message:      sb.String(),
		Timestamp:    time.Now(),
		MessageType:  models.MessageTypeHistory,
	}, nil
}

func (s *Service) getOrCreateSession(ctx context.Context, token string, userID *int64) (*models.ChatSession, error) {
	if token != "" {
		session, err := s.sessions.FindSessionByToken(ctx, token)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if session != nil && session.IsActive {
			return session, nil
		}
	}
	return s.newSession(ctx, userID)
}

func (s *Service) newSession(ctx context.Context, userID *int64) (*models.ChatSession, error) {
	var resolved *int64
	if userID != nil && s.users != nil {
		user, err := s.users.ResolveUser(ctx, *userID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("resolve user %d: %w", *userID, err)
		}
		if user != nil {
			id := user.ID
			resolved = &id
		}
	}

	now := time.Now()
	session := &models.ChatSession{
		Token:     uuid.NewString(),
		UserID:    resolved,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *Service) saveMessage(ctx context.Context, sessionID int64, sender, body string, products []models.Product) error {
	message := &models.ChatMessage{
		SessionID:  sessionID,
		Sender:     sender,
		Body:       body,
		ProductIDs: joinProductIDs(products),
		CreatedAt:  time.Now(),
	}
	return s.sessions.SaveMessage(ctx, message)
}

// typingDelay blocks for a random duration in the configured range so
// replies feel typed rather than instantaneous. Cosmetic only.
func (s *Service) typingDelay() {
	if s.opts.MaxReplyDelay <= 0 {
		return
	}
	delay := s.opts.MinReplyDelay
	if span := s.opts.MaxReplyDelay - s.opts.MinReplyDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	time.Sleep(delay)
}

func shapeResponse(token, text string, products []models.Product) *models.Response {
	resp := &models.Response{
		SessionToken: token,
		Message:      text,
		Timestamp:    time.Now(),
		MessageType:  models.MessageTypeText,
	}
	if len(products) > 0 {
		resp.MessageType = models.MessageTypeProductList
		resp.Products = make([]models.ProductSuggestion, 0, len(products))
		for _, p := range products {
			resp.Products = append(resp.Products, models.Suggestion(p))
		}
	}
	return resp
}

func joinProductIDs(products []models.Product) string {
	if len(products) == 0 {
		return ""
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, strconv.FormatInt(p.ID, 10))
	}
	return strings.Join(ids, ",")
}
