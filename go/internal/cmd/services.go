package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/econlabs/growthgame/go/internal/econ"
	"github.com/econlabs/growthgame/go/internal/game"
	"github.com/econlabs/growthgame/go/internal/game/scheduler"
	"github.com/econlabs/growthgame/go/internal/gateway"
	"github.com/econlabs/growthgame/go/internal/roster"
)

type Services struct {
	Session *game.Session
	Manager *gateway.ConnectionManager
	Handler *gateway.SessionHandler
}

func setupServices(config *Config) (*Services, error) {
	class, err := roster.Load(config.RosterFile)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	clock := clockwork.NewRealClock()
	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	model := econ.Default(config.Game)

	session := game.NewSession(config.Game, model, manager, class, clock)
	session.SetTimer(scheduler.New(clock, session))
	handler := gateway.NewSessionHandler(manager, session, clock)

	return &Services{
		Session: session,
		Manager: manager,
		Handler: handler,
	}, nil
}
