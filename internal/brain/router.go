package brain

import (
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/handler/middleware"
	v1 "github.com/Missonix/SSAI-brain/internal/brain/handler/v1"
	"github.com/Missonix/SSAI-brain/internal/brain/service/llm"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	roleplay   *roleplay.Module
	llmManager *llm.Manager
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, _ *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.CORS())
	g.Use(middleware.AccessLog())
}

func installController(g *gin.Engine, deps *routerDeps) {
	rp := deps.roleplay

	// Handlers.
	chatHandler := v1.NewChatHandler(rp.Orchestrator)
	roleHandler := v1.NewRoleHandler(rp.Roles, rp.Personas, rp.Moods)
	moodHandler := v1.NewMoodHandler(rp.Roles, rp.Moods)
	plotHandler := v1.NewPlotHandler(rp.Plots, rp.Clock)
	sessionHandler := v1.NewSessionHandler(rp.Sessions, rp.Log)
	lifeStoryHandler := v1.NewLifeStoryHandler(rp.Machine, rp.LifeStore, rp.Roles)
	modelHandler := v1.NewModelHandler(deps.llmManager)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Per-turn chat.
		apiV1.POST("/chat", chatHandler.Handle)

		// Role catalogue.
		apiV1.GET("/roles", roleHandler.List)
		apiV1.GET("/roles/:id", roleHandler.Get)
		apiV1.POST("/roles/:id/init", roleHandler.Init)

		// Mood.
		apiV1.GET("/roles/:id/mood", moodHandler.Get)
		apiV1.POST("/roles/:id/mood/reset", moodHandler.Reset)

		// Plot window.
		apiV1.GET("/roles/:id/plot", plotHandler.Get)

		// Life story.
		apiV1.GET("/roles/:id/lifestory", lifeStoryHandler.Status)
		apiV1.POST("/roles/:id/lifestory/advance", lifeStoryHandler.Advance)

		// Session management.
		apiV1.GET("/sessions", sessionHandler.List)
		apiV1.GET("/sessions/:id", sessionHandler.Get)
		apiV1.DELETE("/sessions/:id", sessionHandler.Delete)
		apiV1.POST("/sessions/:id/cleanup", sessionHandler.Cleanup)
		apiV1.GET("/sessions/:id/messages", sessionHandler.Messages)

		// Models.
		apiV1.GET("/models", modelHandler.List)
	}
}
