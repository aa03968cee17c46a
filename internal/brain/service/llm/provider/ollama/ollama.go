package ollama

import (
	"context"

	einoOllama "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

const Name = "ollama"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ProviderPlugin {
	return &Plugin{BasePlugin: helper.BasePlugin{PluginName: Name}}
}

func (p *Plugin) BuildChatModel(ctx context.Context, instance *entity.ModelInstance, provider *entity.ModelProvider, params *entity.LLMParams) (model.BaseChatModel, error) {
	cfg := &einoOllama.ChatModelConfig{
		BaseURL: "http://127.0.0.1:11434",
		Model:   instance.ModelID,
		Options: &einoOllama.Options{},
	}
	if instance.BaseURL != "" {
		cfg.BaseURL = instance.BaseURL
	}
	if params != nil {
		if params.Temperature != nil {
			cfg.Options.Temperature = *params.Temperature
		}
		if params.TopP != nil {
			cfg.Options.TopP = *params.TopP
		}
	}
	return einoOllama.NewChatModel(ctx, cfg)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "http://127.0.0.1:11434",
		APIKey:  "${OLLAMA_API_KEY}",
		Models:  []options.ModelDefinition{},
	}
}
