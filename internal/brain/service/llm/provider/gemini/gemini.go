package gemini

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

const Name = "gemini"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{BasePlugin: helper.BasePlugin{PluginName: Name}}
}

// BuildChatModel goes through the genai client instead of the
// OpenAI-compatible path.
func (p *Plugin) BuildChatModel(ctx context.Context, instance *entity.ModelInstance, provider *entity.ModelProvider, params *entity.LLMParams) (model.BaseChatModel, error) {
	apiKey := instance.APIKey
	if apiKey == "" {
		apiKey = provider.APIKey
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: "https://generativelanguage.googleapis.com/",
		},
	}
	if instance.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = instance.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s: %w", instance.Key(), err)
	}

	cfg := &einoGemini.Config{
		Client: client,
		Model:  instance.ModelID,
	}
	if params != nil {
		cfg.Temperature = params.Temperature
		cfg.TopP = params.TopP
		if params.MaxTokens != 0 {
			mt := params.MaxTokens
			cfg.MaxTokens = &mt
		}
	}
	return einoGemini.NewChatModel(ctx, cfg)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "",
		APIKey:  "${GOOGLE_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", ContextWindow: 1048576, MaxTokens: 8192},
			{ID: "gemini-2.5-flash-preview-05-20", Name: "Gemini 2.5 Flash", ContextWindow: 1048576, MaxTokens: 65536},
		},
	}
}
