package brain

import (
	"github.com/Missonix/SSAI-brain/internal/brain/config"
)

func Run(cfg *config.Config) error {
	server, err := createBrainServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
