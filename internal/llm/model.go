// Package llm provides the generation transport for lesson-plan backends
// using langchaingo.
package llm

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Backend is a parsed backend identifier: "model" or "provider:model".
type Backend struct {
	Provider config.Provider
	Model    string
}

// String returns the canonical "provider:model" form.
func (b Backend) String() string {
	return string(b.Provider) + ":" + b.Model
}

// ParseBackend parses id, using def when id carries no provider prefix.
// Model names may themselves contain ':' (e.g. ollama tags); only a known
// provider prefix is split off.
func ParseBackend(id string, def config.Provider) (Backend, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Backend{}, fmt.Errorf("empty backend identifier")
	}
	if prefix, rest, ok := strings.Cut(id, ":"); ok {
		p := config.Provider(strings.ToLower(prefix))
		if p.Valid() {
			if rest == "" {
				return Backend{}, fmt.Errorf("backend %q has no model", id)
			}
			return Backend{Provider: p, Model: rest}, nil
		}
	}
	if !def.Valid() {
		return Backend{}, fmt.Errorf("unsupported LLM provider: %s", def)
	}
	return Backend{Provider: def, Model: id}, nil
}

// Model wraps a langchaingo LLM bound to one backend.
type Model struct {
	llm llms.Model
}

// NewModel creates an LLM model for backend b.
func NewModel(ctx context.Context, cfg config.Config, b Backend) (*Model, error) {
	var model llms.Model
	var err error

	switch b.Provider {
	case config.ProviderGoogleAI:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key required")
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(b.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create googleai model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(b.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(b.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(b.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(b.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", b.Provider)
	}

	return &Model{llm: model}, nil
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("generate with system: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return response.Choices[0].Content, nil
}
