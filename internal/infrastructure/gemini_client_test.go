package infrastructure

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestPromptPartsSendsContextOnce(t *testing.T) {
	prompt := `Known so far: {"vaccine_type":"Pfizer"}` + "\nUser: hi"

	parts := promptParts(prompt)

	assert.Equal(t, []genai.Part{genai.Text(prompt)}, parts)
}
