package main

import (
	"math/rand"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/Missonix/SSAI-brain/internal/braind"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	braind.NewApp("braind").Run()
}
