package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

// GenAIOptions selects the Gemini backend. An APIKey selects the Gemini
// API; otherwise Project and Location select Vertex AI.
type GenAIOptions struct {
	APIKey    string
	Project   string
	Location  string
	ModelName string
}

type GenAIClient struct {
	client    *genai.Client
	modelName string
}

// NewGenAIClient creates an LLMClient backed by Gemini.
func NewGenAIClient(ctx context.Context, opts GenAIOptions) (*GenAIClient, error) {
	if opts.ModelName == "" {
		return nil, errors.New("model name is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.APIKey == "" {
		if opts.Project == "" || opts.Location == "" {
			return nil, errors.New("project and location are required for Vertex AI")
		}
		cfg = &genai.ClientConfig{
			Project:  opts.Project,
			Location: opts.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: opts.ModelName,
	}, nil
}

// GenerateReply implements domain.LLMClient. History goes out as
// structured turns followed by the new user message.
func (g *GenAIClient) GenerateReply(
	ctx context.Context,
	userMessage string,
	convCtx domain.ConversationContext,
) (string, error) {
	contents := BuildContents(userMessage, convCtx.History)

	cfg := &genai.GenerateContentConfig{}
	if system := SystemInstruction(convCtx.Purpose); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", errors.New("genai returned empty text")
	}
	return text, nil
}

// BuildContents maps stored messages to Gemini turns: assistant messages
// become "model" turns, everything else a "user" turn.
func BuildContents(userMessage string, history []*domain.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Author == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))
}
