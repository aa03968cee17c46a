// Package llm builds and caches eino chat models from the registered
// provider plugins.
package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/helper"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Config holds the configuration for the LLM module.
type Config struct {
	ModelOptions *options.ModelOptions

	// OutOfTreeRegistry lets callers add provider plugins beyond the
	// built-in set. Nil means in-tree only.
	OutOfTreeRegistry *provider.Registry
}

// CompletedConfig is the validated configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.ModelOptions == nil {
		c.ModelOptions = options.NewModelOptions()
	}
	return CompletedConfig{c}
}

// Module is the LLM module: provider registry plus the model manager.
type Module struct {
	Manager  *Manager
	Registry *provider.Registry
}

// New creates and initializes the LLM module.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	registry := provider.NewInTreeRegistry()
	if c.OutOfTreeRegistry != nil {
		if err := registry.Merge(c.OutOfTreeRegistry); err != nil {
			return nil, fmt.Errorf("failed to merge out-of-tree providers: %w", err)
		}
	}
	logger.Info("[LLM] provider registry initialized with %d plugins", registry.Len())

	manager := NewManager(c.ModelOptions, registry)
	if err := manager.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}
	return &Module{Manager: manager, Registry: registry}, nil
}

// Completer returns the default-model text completer used by the domain
// services.
func (m *Module) Completer() *TextCompleter {
	temp := m.Manager.opts.Temperature
	return &TextCompleter{
		manager: m.Manager,
		params:  &entity.LLMParams{Temperature: &temp},
		timeout: time.Duration(m.Manager.opts.TimeoutSeconds) * time.Second,
	}
}

// Manager resolves providers and model instances and builds chat models.
type Manager struct {
	opts     *options.ModelOptions
	registry *provider.Registry

	mu         sync.RWMutex
	providers  map[string]*entity.ModelProvider
	instances  map[string]*entity.ModelInstance
	chatModels map[string]model.BaseChatModel
}

// NewManager creates an uninitialized Manager.
func NewManager(opts *options.ModelOptions, registry *provider.Registry) *Manager {
	return &Manager{
		opts:       opts,
		registry:   registry,
		providers:  make(map[string]*entity.ModelProvider),
		instances:  make(map[string]*entity.ModelInstance),
		chatModels: make(map[string]model.BaseChatModel),
	}
}

// Initialize discovers providers and instances from the registry merged
// with user config.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.registry.Names() {
		plugin, _ := m.registry.Get(name)
		cfg := helper.MergeConfig(plugin.DefaultConfig(), m.opts.Providers[name])

		prov, err := plugin.BuildProvider(cfg)
		if err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
		instances, err := plugin.BuildModels(prov, cfg)
		if err != nil {
			return fmt.Errorf("provider %q models: %w", name, err)
		}

		m.providers[name] = prov
		for _, inst := range instances {
			m.instances[inst.Key()] = inst
		}
		logger.Info("[LLM] provider %s registered with %d models", name, len(instances))
	}

	defaultKey := m.opts.DefaultProvider + "/" + m.opts.DefaultModel
	if _, ok := m.instances[defaultKey]; !ok {
		return fmt.Errorf("default model %q is not offered by any provider", defaultKey)
	}
	return nil
}

// GetChatModel returns a cached chat model for provider/model built with
// provider defaults.
func (m *Manager) GetChatModel(ctx context.Context, providerID, modelID string) (model.BaseChatModel, error) {
	key := providerID + "/" + modelID
	m.mu.RLock()
	cached, ok := m.chatModels[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	cm, err := m.BuildChatModel(ctx, providerID, modelID, nil)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.chatModels[key] = cm
	m.mu.Unlock()
	return cm, nil
}

// GetDefaultChatModel returns the cached chat model for the configured
// default.
func (m *Manager) GetDefaultChatModel(ctx context.Context) (model.BaseChatModel, error) {
	return m.GetChatModel(ctx, m.opts.DefaultProvider, m.opts.DefaultModel)
}

// BuildChatModel always builds a fresh chat model with the given params.
func (m *Manager) BuildChatModel(ctx context.Context, providerID, modelID string, params *entity.LLMParams) (model.BaseChatModel, error) {
	m.mu.RLock()
	prov, okP := m.providers[providerID]
	inst, okI := m.instances[providerID+"/"+modelID]
	m.mu.RUnlock()
	if !okP {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	if !okI {
		return nil, fmt.Errorf("unknown model %q for provider %q", modelID, providerID)
	}

	plugin, ok := m.registry.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("no plugin for provider %q", providerID)
	}
	chatPlugin, ok := plugin.(spi.ChatModelPlugin)
	if !ok {
		return nil, fmt.Errorf("provider %q cannot build chat models", providerID)
	}
	return chatPlugin.BuildChatModel(ctx, inst, prov, params)
}

// Instances lists every known model instance.
func (m *Manager) Instances() []*entity.ModelInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entity.ModelInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	return out
}

// TextCompleter adapts the default chat model to the plain system+user
// completion shape the domain services consume.
type TextCompleter struct {
	manager *Manager
	params  *entity.LLMParams
	timeout time.Duration
}

// Generate runs one completion against the default model.
func (t *TextCompleter) Generate(ctx context.Context, system, user string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cm, err := t.manager.GetDefaultChatModel(ctx)
	if err != nil {
		return "", err
	}
	msg, err := cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
