// Package spi defines the provider plugin contract.
package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
)

// ProviderPlugin describes one model provider.
type ProviderPlugin interface {
	// Name returns the provider's registry name.
	Name() string
	// DefaultConfig returns the provider's built-in configuration; user
	// config is merged over it.
	DefaultConfig() *options.ProviderConfig
	// BuildProvider builds the provider record from merged config.
	BuildProvider(cfg *options.ProviderConfig) (*entity.ModelProvider, error)
	// BuildModels builds the provider's model instances.
	BuildModels(provider *entity.ModelProvider, cfg *options.ProviderConfig) ([]*entity.ModelInstance, error)
}

// ChatModelPlugin extends ProviderPlugin with eino chat-model construction.
type ChatModelPlugin interface {
	ProviderPlugin
	// BuildChatModel builds a BaseChatModel for one instance. params may be
	// nil, in which case provider defaults apply.
	BuildChatModel(ctx context.Context, instance *entity.ModelInstance, provider *entity.ModelProvider, params *entity.LLMParams) (model.BaseChatModel, error)
}

// PluginFactory creates a ProviderPlugin.
type PluginFactory func() ProviderPlugin
