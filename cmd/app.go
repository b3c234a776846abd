package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/killallgit/cortex-chat/pkg/auth"
	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/cortex"
	"github.com/killallgit/cortex-chat/pkg/logger"
	"github.com/killallgit/cortex-chat/pkg/warehouse"
)

// App holds the process-wide collaborators of one run
type App struct {
	Config       *config.Config
	Session      *auth.Session
	Executor     warehouse.Executor
	Orchestrator *chat.Orchestrator
}

// NewApp validates the configuration and wires the session, agent client,
// query executor and orchestrator
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	session := auth.NewSession(cfg.Auth, cfg.Cortex.Timeout)
	client := cortex.NewClient(cfg.AgentURL(), session)

	executor, err := warehouse.New(ctx, cfg, session)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create query executor: %w", err)
	}

	orch := chat.NewOrchestrator(client, executor, chat.Options{
		Model:       cfg.Cortex.Model,
		Resources:   cfg.Resources,
		SearchLimit: chat.InteractiveSearchLimit,
	})

	log.Info("Application ready",
		"agent", cfg.AgentURL(),
		"model", cfg.Cortex.Model,
		"auth", cfg.Auth.Method,
		"warehouse", cfg.Warehouse.Driver)

	return &App{
		Config:       cfg,
		Session:      session,
		Executor:     executor,
		Orchestrator: orch,
	}, nil
}

func (a *App) Close() {
	if closer, ok := a.Executor.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.WithComponent("app").Warn("Failed to close executor", "error", err)
		}
	}
	a.Session.Close()
}
