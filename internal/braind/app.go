// Package braind builds the braind server application.
package braind

import (
	"fmt"

	"github.com/Missonix/SSAI-brain/internal/brain"
	"github.com/Missonix/SSAI-brain/internal/brain/config"
	"github.com/Missonix/SSAI-brain/internal/brain/options"
	"github.com/Missonix/SSAI-brain/pkg/app"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// NewApp creates the braind application.
func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	application := app.NewApp("braind",
		basename,
		app.WithOptions(opts),
		app.WithDescription(`The braind daemon serves stateful character chat:
per-turn mood composition, the life-story state machine and the dialogue
log, behind a gin HTTP API.`),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		logPath := fmt.Sprintf("%s/%s.log", basename, basename)
		if err := logger.InitLog(logPath); err != nil {
			return err
		}
		defer logger.FlushLog()

		cfg, err := config.CreateConfigFromOptions(opts)
		if err != nil {
			return err
		}

		return brain.Run(cfg)
	}
}
