// Package helper carries the shared plugin scaffolding: config merging,
// env resolution and the OpenAI-compatible chat-model path most providers
// reuse.
package helper

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

// BasePlugin implements the config-driven half of a provider plugin.
type BasePlugin struct {
	PluginName string
}

func (b *BasePlugin) Name() string { return b.PluginName }

// DefaultConfig is overridden by every concrete plugin.
func (b *BasePlugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{}
}

// BuildProvider constructs the provider record from merged config.
func (b *BasePlugin) BuildProvider(cfg *options.ProviderConfig) (*entity.ModelProvider, error) {
	return &entity.ModelProvider{
		ID:      b.PluginName,
		BaseURL: cfg.BaseURL,
		APIKey:  ResolveEnvValue(cfg.APIKey),
		Enabled: true,
	}, nil
}

// BuildModels constructs instances from the config's model definitions.
func (b *BasePlugin) BuildModels(p *entity.ModelProvider, cfg *options.ProviderConfig) ([]*entity.ModelInstance, error) {
	apiKey := ResolveEnvValue(cfg.APIKey)
	var instances []*entity.ModelInstance
	for _, def := range cfg.Models {
		name := def.Name
		if name == "" {
			name = def.ID
		}
		instances = append(instances, &entity.ModelInstance{
			ModelID:       def.ID,
			ProviderID:    p.ID,
			DisplayName:   name,
			BaseURL:       cfg.BaseURL,
			APIKey:        apiKey,
			ContextWindow: def.ContextWindow,
			MaxTokens:     def.MaxTokens,
		})
	}
	return instances, nil
}

// NewOpenAICompatibleChatModel is the common path for providers exposing an
// OpenAI-compatible endpoint.
func NewOpenAICompatibleChatModel(ctx context.Context, instance *entity.ModelInstance, provider *entity.ModelProvider, params *entity.LLMParams) (model.BaseChatModel, error) {
	if instance.APIKey == "" && provider.APIKey == "" {
		return nil, fmt.Errorf("model %s has no API key configured", instance.Key())
	}

	cfg := &einoOpenAI.ChatModelConfig{
		Model:  instance.ModelID,
		APIKey: instance.APIKey,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = provider.APIKey
	}
	if instance.BaseURL != "" {
		cfg.BaseURL = instance.BaseURL
	}
	if params != nil {
		cfg.Temperature = params.Temperature
		cfg.TopP = params.TopP
		if params.MaxTokens != 0 {
			cfg.MaxTokens = gptr.Of(params.MaxTokens)
		}
	}
	return einoOpenAI.NewChatModel(ctx, cfg)
}

// MergeConfig lays user config over the plugin default.
func MergeConfig(def, user *options.ProviderConfig) *options.ProviderConfig {
	if user == nil {
		return def
	}
	merged := *def
	if user.BaseURL != "" {
		merged.BaseURL = user.BaseURL
	}
	if user.APIKey != "" {
		merged.APIKey = user.APIKey
	}
	if len(user.Models) > 0 {
		merged.Models = user.Models
	}
	return &merged
}

// ResolveEnvValue resolves "${ENV_VAR}" references in a string.
func ResolveEnvValue(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}
