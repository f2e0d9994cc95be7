package cli

import (
	"fmt"
	"os"

	"github.com/hobbysprout/sprout/internal/config"
	"github.com/hobbysprout/sprout/internal/db"
	"github.com/hobbysprout/sprout/internal/gateway"
	"github.com/hobbysprout/sprout/internal/milestone"
	"github.com/hobbysprout/sprout/internal/profile"
	"github.com/hobbysprout/sprout/internal/quiz"
	"github.com/hobbysprout/sprout/internal/session"
)

// App wires the config, state store, gateway, and synchronizers together for
// one command invocation. State is restored from disk on open and any change
// made during the command is persisted before Close.
type App struct {
	Config    *config.Config
	Store     *db.Store
	Gateway   *gateway.Client
	Sessions  *session.Manager
	Milestone *milestone.Service
	Profile   *profile.Service
	Quiz      *quiz.Runner
}

func openApp() (*App, error) {
	cfg := config.Load()

	store, err := db.Open(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	gw := gateway.NewClient(cfg.APIBase)
	gw.SetTimeout(cfg.Timeout())

	mgr := session.NewManager(gw, store, func(ev session.Event) {
		if ev == session.EventNavigateLogin {
			fmt.Fprintln(os.Stderr, "session ended; run `sprout login` to sign in again")
		}
	})
	gw.SetTokenSource(mgr)
	gw.OnAuthRejected(mgr.HandleAuthRejected)

	if err := mgr.Restore(); err != nil {
		store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Gateway:   gw,
		Sessions:  mgr,
		Milestone: milestone.NewService(gw),
		Profile:   profile.NewService(gw),
		Quiz:      quiz.NewRunner(gw),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// requireAuth opens the app and refuses to proceed without a restored session.
func requireAuth() (*App, error) {
	app, err := openApp()
	if err != nil {
		return nil, err
	}
	if !app.Sessions.IsAuthenticated() {
		app.Close()
		return nil, fmt.Errorf("not signed in; run `sprout login` first")
	}
	return app, nil
}
