package chat_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/catalog"
	"github.com/nhatminh/shopbot/internal/chat"
	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/reply"
	"github.com/nhatminh/shopbot/internal/storage"
)

// stubFormatter stands in for the LLM client.
type stubFormatter struct {
	reply string
	err   error
	calls int
}

func (f *stubFormatter) Format(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(store *storage.MemoryStore, formatter *stubFormatter) *chat.Service {
	logger := zap.NewNop()
	return chat.NewService(
		store, store, store,
		intent.NewDetector(logger),
		catalog.NewPlanner(store, logger),
		reply.NewBuilder(store, logger),
		formatter,
		logger,
		chat.Options{},
	)
}

func seedCatalog(store *storage.MemoryStore) int64 {
	id := store.AddProduct(models.Product{Name: "iPhone 15", Price: 20_000_000})
	store.AddVariant(models.Variant{ProductID: id, Name: "128GB", Quantity: 5})
	return id
}

func sessionMessages(t *testing.T, store *storage.MemoryStore, token string) []models.ChatMessage {
	t.Helper()
	session, err := store.FindSessionByToken(context.Background(), token)
	require.NoError(t, err)
	messages, err := store.FindMessagesBySession(context.Background(), session.ID)
	require.NoError(t, err)
	return messages
}

// Every branch must persist exactly one USER and one BOT message.
func assertOneExchange(t *testing.T, store *storage.MemoryStore, token, userBody, botBody string) {
	t.Helper()
	messages := sessionMessages(t, store, token)
	require.Len(t, messages, 2)
	assert.Equal(t, models.SenderUser, messages[0].Sender)
	assert.Equal(t, userBody, messages[0].Body)
	assert.Equal(t, models.SenderBot, messages[1].Sender)
	assert.Equal(t, botBody, messages[1].Body)
}

func TestProcessMessage_Greeting(t *testing.T) {
	store := storage.NewMemoryStore()
	formatter := &stubFormatter{}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "xin chào shop"})
	require.NoError(t, err)

	assert.Equal(t, reply.GreetingText, resp.Message)
	assert.Equal(t, models.MessageTypeText, resp.MessageType)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Empty(t, resp.Products)
	assert.Zero(t, formatter.calls)

	assertOneExchange(t, store, resp.SessionToken, "xin chào shop", reply.GreetingText)
}

func TestProcessMessage_Goodbye(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(store, &stubFormatter{})

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "cảm ơn nha"})
	require.NoError(t, err)

	assert.Equal(t, reply.GoodbyeText, resp.Message)
	assertOneExchange(t, store, resp.SessionToken, "cảm ơn nha", reply.GoodbyeText)
}

func TestProcessMessage_ProductIntent(t *testing.T) {
	store := storage.NewMemoryStore()
	id := seedCatalog(store)
	formatter := &stubFormatter{reply: "Dạ iPhone 15 bên shop đang có giá 20 triệu ạ 😊"}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giá iPhone 15 bao nhiêu"})
	require.NoError(t, err)

	assert.Equal(t, formatter.reply, resp.Message)
	assert.Equal(t, models.MessageTypeProductList, resp.MessageType)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "iPhone 15", resp.Products[0].Name)
	assert.Equal(t, float64(20_000_000), resp.Products[0].Price)

	messages := sessionMessages(t, store, resp.SessionToken)
	require.Len(t, messages, 2)
	assert.Equal(t, strconv.FormatInt(id, 10), messages[1].ProductIDs)
}

func TestProcessMessage_FormatterErrorFallsBack(t *testing.T) {
	store := storage.NewMemoryStore()
	seedCatalog(store)
	formatter := &stubFormatter{err: errors.New("upstream timeout")}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giá iPhone 15 bao nhiêu"})
	require.NoError(t, err)

	assert.Contains(t, resp.Message, "Shop tìm thấy 1 sản phẩm phù hợp")
	assert.Contains(t, resp.Message, "iPhone 15")
	assert.Len(t, resp.Products, 1)

	messages := sessionMessages(t, store, resp.SessionToken)
	assert.Len(t, messages, 2)
}

func TestProcessMessage_ContextEchoFallsBack(t *testing.T) {
	store := storage.NewMemoryStore()
	seedCatalog(store)
	formatter := &stubFormatter{reply: "CONTEXT: Khách hàng tìm kiếm nhưng không có sản phẩm khớp chính xác."}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giá iPhone 15 bao nhiêu"})
	require.NoError(t, err)

	assert.Contains(t, resp.Message, "Shop tìm thấy 1 sản phẩm phù hợp")
	assert.NotContains(t, resp.Message, "CONTEXT:")
}

func TestProcessMessage_GuardRejectionSendsPlainText(t *testing.T) {
	store := storage.NewMemoryStore()
	seedCatalog(store)
	formatter := &stubFormatter{reply: "iPhone 15 chỉ 99 triệu thôi, một siêu phẩm tuyệt vời!"}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giá iPhone 15 bao nhiêu"})
	require.NoError(t, err)

	// The raw markup never reaches the user; neither does the rejected text.
	assert.NotEqual(t, formatter.reply, resp.Message)
	assert.Contains(t, resp.Message, "💰 Giá: 20 triệu")
	assert.NotContains(t, resp.Message, "SẢN PHẨM:")
	assert.NotContains(t, resp.Message, "99")
	assert.Len(t, resp.Products, 1)
}

func TestProcessMessage_NoMatch(t *testing.T) {
	store := storage.NewMemoryStore()
	formatter := &stubFormatter{reply: "Dạ hiện shop chưa có mẫu Samsung nào, bạn cho mình xin ngân sách để tư vấn thêm nha 😊"}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "điện thoại samsung còn hàng không"})
	require.NoError(t, err)

	assert.Equal(t, formatter.reply, resp.Message)
	assert.Equal(t, models.MessageTypeText, resp.MessageType)
	assert.Empty(t, resp.Products)
}

func TestProcessMessage_FAQ(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddFAQ(models.FAQ{
		Question: "giao hàng",
		Answer:   "Shop giao hàng toàn quốc trong 2-4 ngày làm việc.",
		Category: "shipping",
		IsActive: true,
	})
	formatter := &stubFormatter{}
	svc := newTestService(store, formatter)

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giao hàng mất mấy ngày vậy"})
	require.NoError(t, err)

	assert.Equal(t, "Shop giao hàng toàn quốc trong 2-4 ngày làm việc.", resp.Message)
	assert.Zero(t, formatter.calls)
}

func TestProcessMessage_FAQWithoutStoredAnswer(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(store, &stubFormatter{})

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "giao hàng mất mấy ngày vậy"})
	require.NoError(t, err)

	assert.Equal(t, reply.FAQFallbackText, resp.Message)
}

func TestProcessMessage_OpenDomain(t *testing.T) {
	t.Run("uses the completion verbatim", func(t *testing.T) {
		store := storage.NewMemoryStore()
		formatter := &stubFormatter{reply: "Dạ mình chưa rõ ý bạn lắm, bạn muốn tìm sản phẩm nào ạ?"}
		svc := newTestService(store, formatter)

		resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "ờm ừm ạ"})
		require.NoError(t, err)

		assert.Equal(t, formatter.reply, resp.Message)
		assert.Equal(t, 1, formatter.calls)
	})

	t.Run("falls back when the completion fails", func(t *testing.T) {
		store := storage.NewMemoryStore()
		svc := newTestService(store, &stubFormatter{err: errors.New("upstream timeout")})

		resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "ờm ừm ạ"})
		require.NoError(t, err)

		assert.Equal(t, reply.UnknownFallbackText, resp.Message)
	})
}

func TestProcessMessage_SessionReuse(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(store, &stubFormatter{})

	first, err := svc.ProcessMessage(context.Background(), models.Request{Message: "xin chào"})
	require.NoError(t, err)

	second, err := svc.ProcessMessage(context.Background(), models.Request{
		SessionToken: first.SessionToken,
		Message:      "tạm biệt",
	})
	require.NoError(t, err)

	assert.Equal(t, first.SessionToken, second.SessionToken)
	assert.Len(t, sessionMessages(t, store, first.SessionToken), 4)
}

func TestProcessMessage_UnknownTokenStartsFreshSession(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(store, &stubFormatter{})

	resp, err := svc.ProcessMessage(context.Background(), models.Request{
		SessionToken: "no-such-token",
		Message:      "xin chào",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "no-such-token", resp.SessionToken)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateSession(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddUser(models.User{ID: 7, FullName: "Nguyễn Văn A"})
	svc := newTestService(store, &stubFormatter{})

	userID := int64(7)
	token, err := svc.CreateSession(context.Background(), &userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := store.FindSessionByToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, session.IsActive)
	require.NotNil(t, session.UserID)
	assert.Equal(t, int64(7), *session.UserID)
}

func TestHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newTestService(store, &stubFormatter{})

	resp, err := svc.ProcessMessage(context.Background(), models.Request{Message: "xin chào"})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), resp.SessionToken)
	require.NoError(t, err)

	assert.Equal(t, models.MessageTypeHistory, history.MessageType)
	assert.Contains(t, history.Message, "USER: xin chào")
	assert.Contains(t, history.Message, "BOT: "+reply.GreetingText)
}

func TestHistory_UnknownToken(t *testing.T) {
	svc := newTestService(storage.NewMemoryStore(), &stubFormatter{})

	_, err := svc.History(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
