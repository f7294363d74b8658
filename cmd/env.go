package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/apply"
	"github.com/partypancake8/linkedin-is-lame/internal/session"
	"github.com/partypancake8/linkedin-is-lame/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "easyapply.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// buildSurface picks the live Chromium surface or the scripted fixture,
// depending on offline mode.
func buildSurface() (session.Surface, error) {
	if cfg.Apply.Offline {
		if cfg.Apply.FixturePath == "" {
			return nil, eris.New("offline mode requires apply.fixture_path")
		}
		script, err := session.LoadScript(cfg.Apply.FixturePath)
		if err != nil {
			return nil, err
		}
		return session.NewFixture(script), nil
	}
	return session.NewRod(session.RodConfig{
		Headless:     cfg.Browser.Headless,
		UserDataDir:  cfg.Browser.UserDataDir,
		Bin:          cfg.Browser.Bin,
		NavTimeout:   time.Duration(cfg.Apply.NavTimeoutSecs) * time.Second,
		ModalTimeout: time.Duration(cfg.Apply.ModalTimeoutSecs) * time.Second,
	}), nil
}

// buildOrchestrator wires the answer tables, gate, prompter, and debug sink
// into a ready orchestrator. sink may be nil when debug output is off.
func buildOrchestrator(surface session.Surface, db store.Store) (*apply.Orchestrator, error) {
	tables, err := answers.Load(cfg.Answers.Path)
	if err != nil {
		return nil, err
	}

	opts := apply.Options{
		TestMode:        cfg.Apply.TestMode,
		Interactive:     cfg.Apply.Interactive,
		DebugUnresolved: cfg.Apply.DebugUnresolved,
		ResumePath:      cfg.Apply.ResumePath,
		MaxFormSteps:    cfg.Apply.MaxFormSteps,
	}

	var prompter apply.Prompter
	if opts.Interactive {
		prompter = &apply.TerminalPrompter{In: os.Stdin, Out: os.Stderr}
	}
	gate := apply.NewGate(opts.Interactive, prompter)

	var sink apply.DebugSink
	if opts.DebugUnresolved && db != nil {
		sink = db
	}
	return apply.New(surface, tables, gate, prompter, sink, opts), nil
}
