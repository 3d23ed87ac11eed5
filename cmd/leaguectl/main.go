package main

import (
	"os"

	"github.com/riskibarqy/swiss-league/internal/config"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

func main() {
	logger := logging.NewConsole(logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	logging.SetDefault(logger)

	cli := newApp(deps{
		loadConfig: config.Load,
		logger:     logger,
		git:        execGit{},
		stdin:      os.Stdin,
	})
	if err := cli.Run(os.Args); err != nil {
		_ = logger.Sync()
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.Sync()
}
