// Package roleplay assembles the character domain: stores, per-turn
// services, the turn orchestrator and the life-story machine.
package roleplay

import (
	"context"
	"fmt"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/analyzer"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/dialog"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/lifestory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/orchestrator"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/thought"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
	"github.com/Missonix/SSAI-brain/internal/pkg/options"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Config holds everything the roleplay module needs from the outside.
type Config struct {
	PlotOptions *options.PlotOptions

	// Hot is the hot tier; a degraded in-memory store is acceptable.
	Hot repo.HotStore
	// DB is the opened durable store with its schema ensured.
	DB *sqlite.DB
	// Gen is the default-model text generator.
	Gen repo.TextGenerator
	// Tools is optional; nil disables tool calls.
	Tools orchestrator.ToolRunner
	// AnalysisTimeout bounds the per-turn analysis calls; zero means the
	// analyzer default.
	AnalysisTimeout time.Duration
}

// CompletedConfig is the validated configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults and validates required collaborators.
func (c *Config) Complete() (CompletedConfig, error) {
	if c.PlotOptions == nil {
		c.PlotOptions = options.NewPlotOptions()
	}
	if c.Hot == nil {
		return CompletedConfig{}, fmt.Errorf("roleplay: hot store is required")
	}
	if c.DB == nil {
		return CompletedConfig{}, fmt.Errorf("roleplay: durable store is required")
	}
	if c.Gen == nil {
		return CompletedConfig{}, fmt.Errorf("roleplay: text generator is required")
	}
	return CompletedConfig{c}, nil
}

// Module is the assembled character domain.
type Module struct {
	Clock        clock.Clock
	Roles        repo.RoleRepository
	Sessions     repo.SessionRepository
	Messages     repo.MessageRepository
	LifeStore    repo.LifeStoryRepository
	Personas     *persona.Service
	Moods        *moodengine.Store
	Log          *dialog.Log
	Resolver     *dialog.SessionResolver
	Plots        *plotwindow.Resolver
	Orchestrator *orchestrator.Orchestrator
	Machine      *lifestory.Machine
}

// New wires the module together.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	opts := c.PlotOptions

	clk := clock.New(c.Hot, opts.UTCOffsetHours, time.Duration(opts.ClockTTLMinutes)*time.Minute)

	roles := sqlite.NewRoleStore(c.DB)
	sessions := sqlite.NewSessionStore(c.DB)
	messages := sqlite.NewMessageStore(c.DB)
	lifeStore := sqlite.NewLifeStoryStore(c.DB)

	personas := persona.New(opts.PersonaRoot, opts.SummaryRoot)
	moods := moodengine.NewStore(c.Hot, roles)
	log := dialog.NewLog(c.Hot, messages, sessions)
	resolver := dialog.NewSessionResolver(sessions)

	plots := plotwindow.NewResolver(opts.PlotRoot)
	if opts.WatchFiles {
		if err := plots.Watch(); err != nil {
			logger.Warn("[Roleplay] plot watcher disabled: %v", err)
		}
	}

	orch := orchestrator.New(orchestrator.Deps{
		Roles:    roles,
		Personas: personas,
		Sessions: resolver,
		Log:      log,
		Moods:    moods,
		Analyzer: analyzer.New(c.Gen, c.AnalysisTimeout),
		Thought:  thought.New(c.Gen),
		Plots:    plots,
		Clock:    clk,
		Gen:      c.Gen,
		Tools:    c.Tools,
	})

	machine := lifestory.NewMachine(lifeStore, roles, lifestory.NewGenerator(c.Gen), clk, personas, opts.PlotRoot)

	logger.Info("[Roleplay] module assembled (plot root %q)", opts.PlotRoot)
	return &Module{
		Clock:        clk,
		Roles:        roles,
		Sessions:     sessions,
		Messages:     messages,
		LifeStore:    lifeStore,
		Personas:     personas,
		Moods:        moods,
		Log:          log,
		Resolver:     resolver,
		Plots:        plots,
		Orchestrator: orch,
		Machine:      machine,
	}, nil
}

// Close releases module resources.
func (m *Module) Close() {
	if m.Plots != nil {
		m.Plots.Close()
	}
}
