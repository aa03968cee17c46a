package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd"
)

func main() {
	rand.New(rand.NewSource(time.Now().UnixNano()))

	command := cmd.NewDefaultBrainAdmCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
