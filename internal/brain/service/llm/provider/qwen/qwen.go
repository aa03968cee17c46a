package qwen

import (
	"context"

	"github.com/bytedance/gg/gptr"
	einoQwen "github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

const Name = "qwen"

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

	cfg := &einoQwen.ChatModelConfig{
		APIKey: apiKey,
		Model:  instance.ModelID,
	}
	if instance.BaseURL != "" {
		cfg.BaseURL = instance.BaseURL
	}
	if params != nil {
		cfg.TopP = params.TopP
		if params.Temperature != nil {
			cfg.Temperature = gptr.Of(*params.Temperature)
		}
		if params.MaxTokens != 0 {
			cfg.MaxTokens = gptr.Of(params.MaxTokens)
		}
	}
	return einoQwen.NewChatModel(ctx, cfg)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		APIKey:  "${DASHSCOPE_API_KEY}",
		Models: []options.ModelDefinition{
			{ID: "qwen-plus", Name: "Qwen Plus", ContextWindow: 131072, MaxTokens: 8192},
			{ID: "qwen-turbo", Name: "Qwen Turbo", ContextWindow: 131072, MaxTokens: 8192},
		},
	}
}
