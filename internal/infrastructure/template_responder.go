package infrastructure

import (
	"context"
	"fmt"
)

// TemplateResponder is the offline language-model stand-in used when no API
// key is configured. It asks for whatever is still missing.
type TemplateResponder struct{}

func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

func (t *TemplateResponder) GenerateResponse(_ context.Context, _ string, convo map[string]interface{}) (string, error) {
	vaccine, _ := convo["vaccine_type"].(string)
	location, _ := convo["location"].(string)

	switch {
	case vaccine == "" && location == "":
		return "Which vaccine are you looking for (Pfizer, Moderna or Johnson & Johnson), and where would you like to get it?", nil
	case vaccine == "":
		return fmt.Sprintf("Got it, near %s. Which vaccine would you like: Pfizer, Moderna or Johnson & Johnson?", location), nil
	case location == "":
		return fmt.Sprintf("Great, %s it is. Which city or area should I search in?", vaccine), nil
	default:
		return fmt.Sprintf("Here are clinics offering %s near %s with open appointments, nearest first.", vaccine, location), nil
	}
}
