package claude

import (
	"context"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

const Name = "claude"

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

	maxTokens := instance.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	cfg := &einoClaude.Config{
		APIKey:    apiKey,
		Model:     instance.ModelID,
		MaxTokens: maxTokens,
	}
	if instance.BaseURL != "" {
		base := instance.BaseURL
		cfg.BaseURL = &base
	}
	if params != nil {
		cfg.Temperature = params.Temperature
		cfg.TopP = params.TopP
		if params.MaxTokens != 0 {
			cfg.MaxTokens = params.MaxTokens
		}
	}
	return einoClaude.NewChatModel(ctx, cfg)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.anthropic.com/v1",
		APIKey:  "${ANTHROPIC_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", ContextWindow: 200000, MaxTokens: 64000},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", ContextWindow: 200000, MaxTokens: 64000},
		},
	}
}
