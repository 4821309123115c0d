package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/interfaces"
	"strings"

	"go.uber.org/zap"
)

const systemPrompt = `You are a helpful AI assistant for a vaccination scheduling system.
Extract the following information from the user's message if present:
- Vaccine type (e.g., Pfizer, Moderna, J&J)
- Preferred location or area
- Preferred date/time
- Any special requirements

If the information is not complete, ask follow-up questions.
If all information is present, proceed with scheduling suggestions.`

// ClinicFinder is the availability search used by the orchestrator.
type ClinicFinder interface {
	FindAvailableClinics(ctx context.Context, vaccineType, location string) ([]entities.ClinicAvailability, error)
}

// QueryOrchestrator runs one conversational turn:
// receive, extract, query (when enough is known), compose, respond.
type QueryOrchestrator struct {
	extractor *IntentExtractor
	finder    ClinicFinder
	ai        interfaces.AIClient
	logger    *zap.Logger
}

func NewQueryOrchestrator(extractor *IntentExtractor, finder ClinicFinder, ai interfaces.AIClient, logger *zap.Logger) *QueryOrchestrator {
	return &QueryOrchestrator{
		extractor: extractor,
		finder:    finder,
		ai:        ai,
		logger:    logger,
	}
}

// ProcessQuery never returns an error: faults inside the turn, panics included,
// come back as an error frame and leave the connection usable.
func (o *QueryOrchestrator) ProcessQuery(ctx context.Context, message string, convo *entities.ConversationContext) (frame entities.Frame) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic while processing message", zap.Any("panic", r))
			frame = entities.NewErrorFrame(fmt.Sprintf("Error processing message: %v", r))
		}
	}()

	resp, err := o.runTurn(ctx, message, convo)
	if err != nil {
		o.logger.Warn("turn failed", zap.Error(err))
		return entities.NewErrorFrame("Error processing message: " + err.Error())
	}
	return resp
}

func (o *QueryOrchestrator) runTurn(ctx context.Context, message string, convo *entities.ConversationContext) (*entities.Response, error) {
	convo.LastMessage = message

	extracted := o.extractor.Extract(message)
	convo.Merge(extracted)

	resp := &entities.Response{
		Type:             entities.FrameAIResponse,
		AvailableClinics: []entities.ClinicAvailability{},
		ExtractedInfo:    extracted,
		RequiresFollowup: !convo.ReadyForQuery(),
	}

	if resp.RequiresFollowup {
		text, err := o.generate(ctx, message, convo)
		if err != nil {
			return nil, err
		}
		resp.Message = text
		resp.Context = convo.Snapshot()
		return resp, nil
	}

	vaccineType, location := *convo.VaccineType, *convo.Location
	clinics, err := o.finder.FindAvailableClinics(ctx, vaccineType, location)
	if err != nil {
		return nil, err
	}
	resp.AvailableClinics = clinics

	if len(clinics) == 0 {
		resp.Message = NotFoundMessage(vaccineType, location)
	} else {
		text, err := o.generate(ctx, message, convo)
		if err != nil {
			return nil, err
		}
		resp.Message = text
	}
	resp.Context = convo.Snapshot()

	o.logger.Debug("turn complete",
		zap.String("vaccine_type", vaccineType),
		zap.String("location", location),
		zap.Int("clinics", len(clinics)),
	)
	return resp, nil
}

func (o *QueryOrchestrator) generate(ctx context.Context, message string, convo *entities.ConversationContext) (string, error) {
	snapshot := convo.Snapshot()
	text, err := o.ai.GenerateResponse(ctx, BuildPrompt(message, snapshot), snapshot)
	if err != nil {
		return "", fmt.Errorf("language model: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt combines the system prompt, the user's message and the known context.
func BuildPrompt(message string, convo map[string]interface{}) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nKnown so far: ")
	ctxJSON, err := json.Marshal(convo)
	if err != nil {
		ctxJSON = []byte("{}")
	}
	sb.Write(ctxJSON)
	sb.WriteString("\nUser: ")
	sb.WriteString(message)
	return sb.String()
}

func NotFoundMessage(vaccineType, location string) string {
	return fmt.Sprintf("Sorry, I couldn't find any clinics that offer %s in %s.", vaccineType, location)
}
