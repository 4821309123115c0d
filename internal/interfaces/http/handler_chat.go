package http

import (
	"context"
	"encoding/json"
	"net/http"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/infrastructure"
	"signetic_scheduler/internal/interfaces"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const invalidFrameMessage = `Error processing message: expected a JSON object like {"message": "..."}`

type ChatHandler struct {
	registry      *infrastructure.SessionRegistry
	processor     interfaces.TurnProcessor
	limiter       *infrastructure.MessageRateLimiter
	maxFrameBytes int64
	upgrader      websocket.Upgrader
	logger        *zap.Logger
}

func NewChatHandler(registry *infrastructure.SessionRegistry, processor interfaces.TurnProcessor, limiter *infrastructure.MessageRateLimiter, maxFrameBytes int64, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		registry:      registry,
		processor:     processor,
		limiter:       limiter,
		maxFrameBytes: maxFrameBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket serves GET /api/chat/ws/:client_id for the lifetime of the connection.
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	clientID := c.Param("client_id")
	if !ValidClientID(clientID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client id"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("WebSocket upgrade failed", zap.String("client_id", clientID), zap.Error(err))
		return
	}

	client := infrastructure.NewChatClient(conn, h.maxFrameBytes)
	go client.WritePump()

	session := h.registry.Open(clientID)
	log := h.logger.With(zap.String("client_id", clientID), zap.String("session_id", session.ID))
	log.Info("Client connected")

	defer func() {
		if h.registry.Close(session) {
			log.Info("Client disconnected")
		}
		h.limiter.Reset(session.ID)
		client.Close()
	}()

	if err := h.send(client, entities.NewSystemFrame(entities.WelcomeMessage)); err != nil {
		return
	}
	h.serve(c.Request.Context(), client, session, log)
}

func (h *ChatHandler) serve(ctx context.Context, client *infrastructure.ChatClient, session *infrastructure.ChatSession, log *zap.Logger) {
	for {
		data, err := client.ReadFrame()
		if err != nil {
			if infrastructure.IsDisconnect(err) {
				log.Debug("Connection closed", zap.Error(err))
				return
			}
			log.Warn("Channel error", zap.Error(err))
			h.send(client, entities.NewErrorFrame("Error processing message: "+err.Error()))
			return
		}

		session.Touch()
		frame := h.handleFrame(ctx, session, data, log)
		if err := h.send(client, frame); err != nil {
			log.Warn("Failed to queue frame", zap.Error(err))
			return
		}
		client.ExtendReadDeadline()
	}
}

func (h *ChatHandler) handleFrame(ctx context.Context, session *infrastructure.ChatSession, data []byte, log *zap.Logger) entities.Frame {
	var in entities.InboundFrame
	if err := json.Unmarshal(data, &in); err != nil || in.Message == nil {
		log.Debug("Malformed frame", zap.Int("bytes", len(data)))
		return entities.NewErrorFrame(invalidFrameMessage)
	}
	if err := h.limiter.Check(session.ID); err != nil {
		log.Info("Message throttled")
		return entities.NewErrorFrame(entities.RateLimitedMessage)
	}

	msg := inboundMessage(session.ClientID, *in.Message)
	log.Debug("Message received",
		zap.String("platform", msg.Platform),
		zap.Int("length", len(msg.Content)))
	return h.processor.ProcessQuery(ctx, msg.Content, session.Context)
}

// inboundMessage cleans raw frame text into a web-channel Message.
func inboundMessage(clientID, raw string) entities.Message {
	return entities.Message{
		ClientID: clientID,
		Content:  TruncateString(SanitizeString(raw), MaxMessageLength),
		Platform: "web",
	}
}

func (h *ChatHandler) send(client *infrastructure.ChatClient, frame entities.Frame) error {
	frame.Stamp(time.Now())
	return client.SendJSON(frame)
}
