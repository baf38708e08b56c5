package main

import (
	"os"

	"bloodcell/internal/cli"
	"bloodcell/internal/logging"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Fatal завершает процесс с кодом 1
		logging.New("info", "text", os.Stderr).WithError(err).Fatal("bloodcell stopped")
	}
}
