package brain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"

	"github.com/Missonix/SSAI-brain/internal/brain/config"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm"
	"github.com/Missonix/SSAI-brain/internal/brain/service/mcp"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/inmemory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/redis"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
	"github.com/Missonix/SSAI-brain/internal/brain/service/tools"
	genericapiserver "github.com/Missonix/SSAI-brain/internal/pkg/server"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/shutdown"
	"github.com/Missonix/SSAI-brain/pkg/shutdown/posixsignal"
	"github.com/Missonix/SSAI-brain/pkg/utils/safego"
)

type brainServer struct {
	gs               *shutdown.GracefulShutdown
	genericAPIServer *genericapiserver.GenericAPIServer

	llmModule      *llm.Module
	mcpModule      *mcp.Module
	roleplayModule *roleplay.Module

	hotStore repo.HotStore
	db       *sqlite.DB
}

type preparedBrainServer struct {
	*brainServer
}

func createBrainServer(cfg *config.Config) (*brainServer, error) {
	gs := shutdown.New()
	gs.AddShutdownManager(posixsignal.NewPosixSignalManager())

	genericConfig, err := buildGenericConfig(cfg)
	if err != nil {
		return nil, err
	}
	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	// LLM module.
	llmCfg := &llm.Config{
		ModelOptions: cfg.ModelOptions,
	}
	llmModule, err := llmCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}
	logger.Info("[Brain] LLM module initialized successfully")

	// MCP module; a missing config file means an empty server set.
	mcpFileCfg, err := mcp.LoadFileConfig(cfg.MCPOptions.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config from %q: %w", cfg.MCPOptions.ConfigFile, err)
	}
	mcpCfg := &mcp.Config{
		FileConfig: mcpFileCfg,
	}
	mcpModule, err := mcpCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP module: %w", err)
	}
	logger.Info("[Brain] MCP module initialized successfully")

	// Hot store. A redis outage degrades to the in-memory tier instead of
	// blocking startup.
	hot := buildHotStore(ctx, cfg)

	// Durable store.
	db, err := sqlite.Open(cfg.SQLiteOptions.Path, cfg.SQLiteOptions.BusyTimeoutMS)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %q: %w", cfg.SQLiteOptions.Path, err)
	}

	// Tool runner; nil disables tool calls entirely.
	var toolRunner *tools.Service

	// Roleplay module.
	roleplayCfg := &roleplay.Config{
		PlotOptions:     cfg.PlotOptions,
		Hot:             hot,
		DB:              db,
		Gen:             llmModule.Completer(),
		AnalysisTimeout: time.Duration(cfg.ModelOptions.TimeoutSeconds) * time.Second,
	}
	completedRoleplayCfg, err := roleplayCfg.Complete()
	if err != nil {
		return nil, err
	}
	// The tool runner needs the character clock, which the roleplay module
	// builds; wire it in two steps.
	roleplayModule, err := completedRoleplayCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create roleplay module: %w", err)
	}
	if cfg.ToolOptions.Enabled {
		chatModel, err := llmModule.Manager.GetDefaultChatModel(ctx)
		if err != nil {
			logger.Warn("[Brain] tools disabled, default chat model unavailable: %v", err)
		} else if toolModel, ok := chatModel.(model.ToolCallingChatModel); !ok {
			logger.Warn("[Brain] tools disabled, default chat model cannot bind tools")
		} else {
			toolRunner = tools.New(roleplayModule.Clock, toolModel, mcpModule.Manager, cfg.ToolOptions.Expose,
				time.Duration(cfg.ModelOptions.TimeoutSeconds)*time.Second)
			roleplayModule.Orchestrator.SetTools(toolRunner)
		}
	}
	logger.Info("[Brain] roleplay module initialized successfully")

	// Warm-up: run the life-story unlock check for every configured role.
	safego.Go(func() {
		roleplayModule.Machine.AdvanceAll(context.Background())
	})

	server := &brainServer{
		gs:               gs,
		genericAPIServer: genericServer,
		llmModule:        llmModule,
		mcpModule:        mcpModule,
		roleplayModule:   roleplayModule,
		hotStore:         hot,
		db:               db,
	}

	return server, nil
}

func (s *brainServer) PrepareRun() preparedBrainServer {
	initRouter(s.genericAPIServer.Engine, &routerDeps{
		roleplay:   s.roleplayModule,
		llmManager: s.llmModule.Manager,
	})

	s.gs.AddShutdownCallback(shutdown.Func(func(string) error {
		if s.mcpModule != nil {
			s.mcpModule.Close()
		}
		if s.roleplayModule != nil {
			// Drain buffered dialog history before the stores go away.
			if err := s.roleplayModule.Log.FlushAll(context.Background()); err != nil {
				logger.Warn("[Brain] dialog flush on shutdown incomplete: %v", err)
			}
			s.roleplayModule.Close()
		}
		if closer, ok := s.hotStore.(interface{ Close() error }); ok {
			closer.Close()
		}
		if s.db != nil {
			s.db.Close()
		}
		s.genericAPIServer.Close()
		return nil
	}))
	return preparedBrainServer{s}
}

func (s preparedBrainServer) Run() error {
	// start shutdown managers
	if err := s.gs.Start(); err != nil {
		log.Fatalf("start shutdown manager failed: %s", err.Error())
	}

	return s.genericAPIServer.Run()
}

func buildGenericConfig(cfg *config.Config) (genericConfig *genericapiserver.Config, lastErr error) {
	genericConfig = genericapiserver.NewConfig()
	if lastErr = cfg.GenericServerRunOptions.ApplyTo(genericConfig); lastErr != nil {
		return
	}

	return
}

func buildHotStore(ctx context.Context, cfg *config.Config) repo.HotStore {
	if !cfg.RedisOptions.Enabled {
		logger.Info("[Brain] redis disabled, using in-memory hot store")
		return inmemory.NewHotStore()
	}

	hot, err := redis.NewHotStore(ctx, redis.Config{
		Addr:     cfg.RedisOptions.Addr,
		Password: cfg.RedisOptions.Password,
		DB:       cfg.RedisOptions.DB,
	})
	if err != nil {
		logger.Warn("[Brain] redis unavailable, degrading to in-memory hot store: %v", err)
		return inmemory.NewHotStore()
	}
	logger.Info("[Brain] hot store connected at %s", cfg.RedisOptions.Addr)
	return hot
}
