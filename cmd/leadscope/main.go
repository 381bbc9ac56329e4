package main

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/salesops/leadscope/internal/api"
	"github.com/salesops/leadscope/internal/config"
	"github.com/salesops/leadscope/internal/freshness"
	"github.com/salesops/leadscope/internal/logger"
	"github.com/salesops/leadscope/internal/session"
	"github.com/salesops/leadscope/internal/tui"
)

func main() {
	ctx := context.Background()

	// .env is optional, env vars win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(cfg.Log.Path, cfg.Log.Level)

	sess, err := session.Load(tui.AppDir)
	if err != nil {
		appLog.WithError(err).Warn("session load failed, starting signed out")
		sess = session.Session{}
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout(), appLog)
	client.OnUnauthorized(func() {
		if err := session.Clear(tui.AppDir); err != nil {
			appLog.WithError(err).Warn("session clear failed")
		}
	})

	bus := freshness.NewBus(session.NewSlots())

	appLog.WithField("base_url", cfg.API.BaseURL).Info("starting leadscope")

	p := tea.NewProgram(tui.New(ctx, cfg, appLog, client, bus, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
