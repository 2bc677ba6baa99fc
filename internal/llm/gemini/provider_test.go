package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContents(t *testing.T) {
	history, last, err := toContents([]domain.Message{
		{Role: domain.RoleUser, Content: "hola"},
		{Role: domain.RoleAssistant, Content: "¡Hola!"},
		{Role: domain.RoleUser, Content: "¿abren hoy?"},
		{Role: domain.RoleUser, Content: "¿hasta qué hora?"},
	})
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, roleUser, history[0].Role)
	assert.Equal(t, roleModel, history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("¡Hola!")}, history[1].Parts)
	assert.Equal(t, genai.Text("¿abren hoy?\n¿hasta qué hora?"), last)
}

func TestToContents_RequiresUserTurn(t *testing.T) {
	_, _, err := toContents(nil)
	assert.Error(t, err)

	_, _, err = toContents([]domain.Message{
		{Role: domain.RoleUser, Content: "hola"},
		{Role: domain.RoleAssistant, Content: "¡Hola!"},
	})
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, domain.ErrEmptyCompletion)

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Abrimos "), genai.Text("a las 8. ")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Abrimos a las 8.", text)
}
