// Package bot is the Telegram delivery surface. It forwards each incoming
// message to the chat service and renders the shaped reply; all shopping
// logic lives behind the service.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/chat"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/reply"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chat   *chat.Service
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[int64]string // telegram chat ID -> session token
}

func New(token string, service *chat.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:      api,
		chat:     service,
		logger:   logger,
		sessions: make(map[int64]string),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	resp, err := b.chat.ProcessMessage(ctx, models.Request{
		SessionToken: b.sessionToken(message.Chat.ID),
		Message:      message.Text,
	})
	if err != nil {
		b.logger.Error("failed to process message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Shop đang gặp sự cố, bạn thử lại sau ít phút nhé.")
		return
	}

	b.rememberSession(message.Chat.ID, resp.SessionToken)
	b.sendMessage(message.Chat.ID, renderResponse(resp))
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, reply.GreetingText)
	case "help":
		b.handleHelp(message)
	case "history":
		b.handleHistory(ctx, message)
	case "newchat":
		b.handleNewChat(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Lệnh không hợp lệ. Dùng /help để xem các lệnh.")
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Các lệnh:
/start - Bắt đầu trò chuyện
/help - Xem hướng dẫn
/history - Xem lại lịch sử chat
/newchat - Mở phiên chat mới

Bạn có thể hỏi về sản phẩm, giá, tình trạng hàng, hoặc nhờ tư vấn theo ngân sách!`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	token := b.sessionToken(message.Chat.ID)
	if token == "" {
		b.sendMessage(message.Chat.ID, "Bạn chưa có cuộc trò chuyện nào.")
		return
	}

	resp, err := b.chat.History(ctx, token)
	if err != nil {
		b.logger.Error("failed to load history",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Không tải được lịch sử chat.")
		return
	}

	if strings.TrimSpace(resp.Message) == "" {
		b.sendMessage(message.Chat.ID, "Bạn chưa có cuộc trò chuyện nào.")
		return
	}
	b.sendMessage(message.Chat.ID, resp.Message)
}

func (b *Bot) handleNewChat(ctx context.Context, message *tgbotapi.Message) {
	token, err := b.chat.CreateSession(ctx, nil)
	if err != nil {
		b.logger.Error("failed to create session",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Không mở được phiên chat mới.")
		return
	}

	b.rememberSession(message.Chat.ID, token)
	b.sendMessage(message.Chat.ID, reply.GreetingText)
}

// renderResponse appends the product cards below the reply text.
func renderResponse(resp *models.Response) string {
	if len(resp.Products) == 0 {
		return resp.Message
	}

	var sb strings.Builder
	sb.WriteString(resp.Message)
	sb.WriteString("\n")
	for _, p := range resp.Products {
		sb.WriteString("\n🛒 " + p.Name + " — " + reply.FormatPrice(p.Price))
	}
	return sb.String()
}

func (b *Bot) sessionToken(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) rememberSession(chatID int64, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[chatID] = token
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
