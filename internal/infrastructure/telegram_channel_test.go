package infrastructure

import (
	"context"
	"errors"
	"signetic_scheduler/internal/entities"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMessage struct{ to, content string }

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *recordingMessenger) SendMessage(to, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{to, content})
	return m.err
}

func (m *recordingMessenger) last() sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func (m *recordingMessenger) snapshot() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

// echoProcessor records the message into the context and echoes it back.
type echoProcessor struct{}

func (echoProcessor) ProcessQuery(_ context.Context, message string, convo *entities.ConversationContext) entities.Frame {
	convo.LastMessage = message
	return &entities.Response{Type: entities.FrameAIResponse, Message: "echo: " + message}
}

func newTestChannel(m *recordingMessenger, burst int) (*TelegramChannel, *SessionRegistry) {
	registry := NewSessionRegistry()
	limiter := NewMessageRateLimiter(0.001, burst)
	return NewTelegramChannel(m, registry, echoProcessor{}, limiter, 0, zap.NewNop()), registry
}

func TestTelegramStartAndMessage(t *testing.T) {
	m := &recordingMessenger{}
	ch, registry := newTestChannel(m, 5)
	ctx := context.Background()

	ch.HandleMessage(ctx, 42, "/start")
	assert.Equal(t, sentMessage{"42", entities.WelcomeMessage}, m.last())

	ch.HandleMessage(ctx, 42, "  Pfizer in Boston ")
	assert.Equal(t, sentMessage{"42", "echo: Pfizer in Boston"}, m.last())

	session, ok := registry.Get("tg:42")
	require.True(t, ok)
	assert.Equal(t, "Pfizer in Boston", session.Context.LastMessage)
}

func TestTelegramReset(t *testing.T) {
	m := &recordingMessenger{}
	ch, registry := newTestChannel(m, 5)
	ctx := context.Background()

	ch.HandleMessage(ctx, 7, "hello")
	ch.HandleMessage(ctx, 7, "/reset")

	session, _ := registry.Get("tg:7")
	assert.Empty(t, session.Context.LastMessage)
	assert.True(t, strings.HasPrefix(m.last().content, "Conversation reset."))
}

func TestTelegramRateLimited(t *testing.T) {
	m := &recordingMessenger{}
	ch, _ := newTestChannel(m, 1)
	ctx := context.Background()

	ch.HandleMessage(ctx, 1, "one")
	ch.HandleMessage(ctx, 1, "two")
	assert.Equal(t, entities.RateLimitedMessage, m.last().content)

	// Another chat is unaffected.
	ch.HandleMessage(ctx, 2, "three")
	assert.Equal(t, "echo: three", m.last().content)
}

func TestTelegramSendFailureIsLogged(t *testing.T) {
	m := &recordingMessenger{err: errors.New("network down")}
	ch, _ := newTestChannel(m, 5)

	assert.NotPanics(t, func() { ch.HandleMessage(context.Background(), 3, "hi") })
}

func TestTelegramSweepLeavesWebSessions(t *testing.T) {
	m := &recordingMessenger{}
	ch, registry := newTestChannel(m, 5)
	ch.HandleMessage(context.Background(), 9, "hi")
	registry.Open("browser-1")

	assert.Equal(t, 1, ch.limiter.GetStats()["tracked_sessions"])

	// Zero idle timeout: every Telegram session is stale.
	ch.sweep()

	_, ok := registry.Get("tg:9")
	assert.False(t, ok)
	assert.Equal(t, 0, ch.limiter.GetStats()["tracked_sessions"])
	_, ok = registry.Get("browser-1")
	assert.True(t, ok)
}

func TestTelegramDispatchKeepsArrivalOrder(t *testing.T) {
	m := &recordingMessenger{}
	ch, registry := newTestChannel(m, 100)
	ctx := context.Background()

	texts := []string{"Pfizer", "Moderna", "near Boston", "at Springfield", "thanks"}
	for _, text := range texts {
		ch.Dispatch(ctx, 1, text)
	}
	ch.Dispatch(ctx, 2, "other chat")

	require.Eventually(t, func() bool { return len(m.snapshot()) == len(texts)+1 }, 5*time.Second, 5*time.Millisecond)

	var got []string
	for _, sent := range m.snapshot() {
		if sent.to == "1" {
			got = append(got, sent.content)
		}
	}
	assert.Equal(t, []string{
		"echo: Pfizer",
		"echo: Moderna",
		"echo: near Boston",
		"echo: at Springfield",
		"echo: thanks",
	}, got)

	session, ok := registry.Get("tg:1")
	require.True(t, ok)
	assert.Equal(t, "thanks", session.Context.LastMessage)
}

func TestTelegramDispatchSkipsEmptyText(t *testing.T) {
	m := &recordingMessenger{}
	ch, registry := newTestChannel(m, 5)
	ctx := context.Background()

	ch.Dispatch(ctx, 5, "")
	ch.Dispatch(ctx, 5, "   ")
	ch.Dispatch(ctx, 5, "hi")

	require.Eventually(t, func() bool { return len(m.snapshot()) == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, sentMessage{"5", "echo: hi"}, m.snapshot()[0])
	assert.Equal(t, 1, registry.Count())
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "oops", FormatReply(entities.NewErrorFrame("oops")))

	resp := &entities.Response{Message: "Found these:"}
	for i := 1; i <= 7; i++ {
		resp.AvailableClinics = append(resp.AvailableClinics, entities.ClinicAvailability{
			Clinic:       entities.Clinic{ID: i, Name: "Clinic", Address: "1 Main St", City: "Boston"},
			Appointments: make([]entities.Appointment, i),
			Distance:     float64(i) + 0.3,
		})
	}
	text := FormatReply(resp)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Found these:", lines[0])
	assert.Equal(t, "1. Clinic, 1 Main St, Boston (1.3 km, 1 open slots)", lines[1])
	assert.Equal(t, "...and 2 more", lines[6])
}
