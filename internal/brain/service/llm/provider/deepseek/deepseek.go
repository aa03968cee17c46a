package deepseek

import (
	"context"

	einoDeepseek "github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

const Name = "deepseek"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{BasePlugin: helper.BasePlugin{PluginName: Name}}
}

func (p *Plugin) BuildChatModel(ctx context.Context, instance *entity.ModelInstance, provider *entity.ModelProvider, params *entity.LLMParams) (model.BaseChatModel, error) {
	apiKey := instance.APIKey
	if apiKey == "" {
		apiKey = provider.APIKey
	}

	cfg := &einoDeepseek.ChatModelConfig{
		APIKey:      apiKey,
		Model:       instance.ModelID,
		Temperature: 0.7,
	}
	if instance.BaseURL != "" {
		cfg.BaseURL = instance.BaseURL
	}
	if params != nil {
		if params.Temperature != nil {
			cfg.Temperature = *params.Temperature
		}
		if params.MaxTokens != 0 {
			cfg.MaxTokens = params.MaxTokens
		}
	}
	return einoDeepseek.NewChatModel(ctx, cfg)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.deepseek.com/v1",
		APIKey:  "${DEEPSEEK_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "deepseek-chat", Name: "Deepseek V3", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "deepseek-reasoner", Name: "Deepseek R1", ContextWindow: 131072, MaxTokens: 8192},
		},
	}
}
