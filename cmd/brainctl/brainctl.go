package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brainctl/cmd"
)

func main() {
	rand.New(rand.NewSource(time.Now().UnixNano()))

	command := cmd.NewDefaultBrainCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
