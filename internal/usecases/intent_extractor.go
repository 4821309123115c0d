package usecases

import (
	"regexp"
	"signetic_scheduler/internal/entities"
	"strings"
)

// KnownVaccines are the canonical vaccine names the assistant recognizes.
var KnownVaccines = []string{"Pfizer", "Moderna", "Johnson & Johnson"}

var (
	vaccineRegex  = regexp.MustCompile(`(?i)(Pfizer|Moderna|Johnson & Johnson)`)
	locationRegex = regexp.MustCompile(`(?i)\b(in|at|near)\s+([A-Za-z\s]+)`)
)

// IntentExtractor pulls vaccine type and location out of free text.
type IntentExtractor struct{}

func NewIntentExtractor() *IntentExtractor {
	return &IntentExtractor{}
}

// Extract never fails; anything it cannot find is left nil.
func (e *IntentExtractor) Extract(text string) entities.ExtractedInfo {
	return entities.ExtractedInfo{
		VaccineType: e.ExtractVaccineType(text),
		Location:    e.ExtractLocation(text),
	}
}

// ExtractVaccineType returns the canonical name of the leftmost vaccine mentioned.
func (e *IntentExtractor) ExtractVaccineType(text string) *string {
	match := vaccineRegex.FindString(text)
	if match == "" {
		return nil
	}
	for _, name := range KnownVaccines {
		if strings.EqualFold(name, match) {
			canonical := name
			return &canonical
		}
	}
	return nil
}

// ExtractLocation returns the words following the first "in", "at" or "near".
func (e *IntentExtractor) ExtractLocation(text string) *string {
	matches := locationRegex.FindStringSubmatch(text)
	if len(matches) < 3 {
		return nil
	}
	location := strings.TrimSpace(matches[2])
	if location == "" {
		return nil
	}
	return &location
}
