package main

import (
	"fmt"
	"os"
	"time"

	"taskflow/internal/api"
	"taskflow/internal/config"
	"taskflow/internal/session"
	"taskflow/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	sess := session.New("")

	client := api.NewClient(cfg.APIBaseURL, sess)
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	if err := ui.Run(client, sess, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
