// Package gemini serves completions from Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/llm"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

type Provider struct {
	apiKey string
	model  string
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{apiKey: apiKey, model: model}
}

func (p *Provider) Generate(ctx context.Context, req llm.Request) (string, error) {
	history, last, err := toContents(req.History)
	if err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last)
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	return responseText(resp)
}

// toContents converts the log into gemini chat history plus the message to
// send. Consecutive turns of the same role are merged because the chat API
// expects alternating roles.
func toContents(messages []domain.Message) ([]*genai.Content, genai.Text, error) {
	var history []*genai.Content
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			continue
		}
		role := roleUser
		if m.Role == domain.RoleAssistant {
			role = roleModel
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(m.Content))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	if len(history) == 0 || history[len(history)-1].Role != roleUser {
		return nil, "", errors.New("gemini: history must end with a user message")
	}

	lastTurn := history[len(history)-1]
	history = history[:len(history)-1]

	var b strings.Builder
	for i, part := range lastTurn.Parts {
		if i > 0 {
			b.WriteString("\n")
		}
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return history, genai.Text(b.String()), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.ErrEmptyCompletion
	}

	var output strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(output.String())
	if text == "" {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}
