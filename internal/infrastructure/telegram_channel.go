package infrastructure

import (
	"context"
	"fmt"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/interfaces"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	telegramSessionPrefix = "tg:"
	maxClinicsInReply     = 5
	maxQueuedPerChat      = 32
	sweepInterval         = time.Minute
)

// TelegramClient sends plain-text messages through a bot.
type TelegramClient struct {
	Bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &TelegramClient{Bot: bot}, nil
}

func (t *TelegramClient) SendMessage(to, content string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", to, err)
	}
	_, err = t.Bot.Send(tgbotapi.NewMessage(chatID, content))
	return err
}

// TelegramChannel feeds Telegram chats through the same turn processor as the
// WebSocket endpoint. Each chat gets a registry session keyed "tg:<chatID>".
// Messages of one chat are handled one after another in arrival order.
type TelegramChannel struct {
	sender      interfaces.Messenger
	registry    *SessionRegistry
	processor   interfaces.TurnProcessor
	limiter     *MessageRateLimiter
	idleTimeout time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	queues map[int64][]string // pending texts per chat; a key exists while its worker runs
}

func NewTelegramChannel(sender interfaces.Messenger, registry *SessionRegistry, processor interfaces.TurnProcessor, limiter *MessageRateLimiter, idleTimeout time.Duration, logger *zap.Logger) *TelegramChannel {
	return &TelegramChannel{
		sender:      sender,
		registry:    registry,
		processor:   processor,
		limiter:     limiter,
		idleTimeout: idleTimeout,
		logger:      logger,
		queues:      make(map[int64][]string),
	}
}

// Run polls bot for updates until ctx is done, sweeping idle chat sessions as it goes.
func (t *TelegramChannel) Run(ctx context.Context, bot *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	t.logger.Info("Telegram polling started", zap.String("bot", bot.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Telegram polling stopped")
			return
		case <-ticker.C:
			t.sweep()
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			t.Dispatch(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	}
}

// Dispatch queues text for chatID. Each chat has at most one worker, which
// drains its queue in order and exits when it is empty. Non-text updates
// (stickers, photos) arrive with empty text and are dropped.
func (t *TelegramChannel) Dispatch(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	t.mu.Lock()
	pending, running := t.queues[chatID]
	if len(pending) >= maxQueuedPerChat {
		t.mu.Unlock()
		t.logger.Warn("Telegram queue full, dropping message", zap.Int64("chat_id", chatID))
		return
	}
	t.queues[chatID] = append(pending, text)
	t.mu.Unlock()

	if !running {
		go t.drain(ctx, chatID)
	}
}

func (t *TelegramChannel) drain(ctx context.Context, chatID int64) {
	for {
		t.mu.Lock()
		pending := t.queues[chatID]
		if len(pending) == 0 {
			delete(t.queues, chatID)
			t.mu.Unlock()
			return
		}
		text := pending[0]
		t.queues[chatID] = pending[1:]
		t.mu.Unlock()

		t.HandleMessage(ctx, chatID, text)
	}
}

func (t *TelegramChannel) sweep() {
	removed := t.registry.SweepIdle(t.idleTimeout, isTelegramSession)
	for _, session := range removed {
		t.limiter.Reset(session.ID)
	}
	if len(removed) > 0 {
		t.logger.Info("Swept idle Telegram sessions", zap.Int("count", len(removed)))
	}
}

func isTelegramSession(s *ChatSession) bool {
	return strings.HasPrefix(s.ClientID, telegramSessionPrefix)
}

// HandleMessage runs one inbound chat message and sends the reply.
func (t *TelegramChannel) HandleMessage(ctx context.Context, chatID int64, text string) {
	to := strconv.FormatInt(chatID, 10)
	msg := entities.Message{
		ClientID: telegramSessionPrefix + to,
		Content:  strings.TrimSpace(text),
		Platform: "telegram",
	}
	session := t.registry.GetOrOpen(msg.ClientID)
	session.Touch()

	var reply string
	session.RunTurn(func() {
		switch msg.Content {
		case "/start":
			reply = entities.WelcomeMessage
		case "/reset":
			session.Context.Reset()
			t.limiter.Reset(session.ID)
			reply = "Conversation reset. " + entities.WelcomeMessage
		default:
			if err := t.limiter.Check(session.ID); err != nil {
				reply = entities.RateLimitedMessage
				return
			}
			reply = FormatReply(t.processor.ProcessQuery(ctx, msg.Content, session.Context))
		}
	})

	if err := t.sender.SendMessage(to, reply); err != nil {
		t.logger.Warn("Failed to send Telegram reply",
			zap.String("client_id", msg.ClientID),
			zap.String("platform", msg.Platform),
			zap.Error(err))
	}
}

// FormatReply renders a frame as chat text, listing at most five clinics.
func FormatReply(frame entities.Frame) string {
	switch f := frame.(type) {
	case *entities.SystemFrame:
		return f.Message
	case *entities.Response:
		var sb strings.Builder
		sb.WriteString(f.Message)
		for i, c := range f.AvailableClinics {
			if i == maxClinicsInReply {
				fmt.Fprintf(&sb, "\n...and %d more", len(f.AvailableClinics)-maxClinicsInReply)
				break
			}
			fmt.Fprintf(&sb, "\n%d. %s, %s, %s (%.1f km, %d open slots)",
				i+1, c.Clinic.Name, c.Clinic.Address, c.Clinic.City, c.Distance, len(c.Appointments))
		}
		return sb.String()
	default:
		return ""
	}
}
