package provider

import (
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/claude"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/deepseek"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/gemini"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/ollama"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/openai"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/qwen"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
)

// NewInTreeRegistry builds the registry of built-in provider plugins.
func NewInTreeRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(openai.Name, func() spi.ProviderPlugin { return openai.New() })
	r.MustRegister(gemini.Name, func() spi.ProviderPlugin { return gemini.New() })
	r.MustRegister(claude.Name, func() spi.ProviderPlugin { return claude.New() })
	r.MustRegister(deepseek.Name, func() spi.ProviderPlugin { return deepseek.New() })
	r.MustRegister(qwen.Name, func() spi.ProviderPlugin { return qwen.New() })
	r.MustRegister(ollama.Name, func() spi.ProviderPlugin { return ollama.New() })
	return r
}
