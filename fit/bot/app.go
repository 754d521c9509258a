// Package bot wires the workout dialog into the Telegram runtime.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/espertofit/core/bootstrap"
	"github.com/m3rciful/espertofit/core/health"
	"github.com/m3rciful/espertofit/core/logger"
	tg "github.com/m3rciful/espertofit/core/telegram"
	"github.com/m3rciful/espertofit/core/telegram/commands"
	"github.com/m3rciful/espertofit/core/telegram/router"
	tgsender "github.com/m3rciful/espertofit/core/telegram/sender"
	"github.com/m3rciful/espertofit/core/telegram/state"
	"github.com/m3rciful/espertofit/core/telegram/ui"
	"github.com/m3rciful/espertofit/fit/action"
	"github.com/m3rciful/espertofit/fit/catalog"
	"github.com/m3rciful/espertofit/fit/config"
	"github.com/m3rciful/espertofit/fit/dialog"
)

// App owns the catalog, the session store and the dialog machine.
type App struct {
	cfg      *config.Config
	infra    *bootstrap.Result
	catalog  *catalog.Catalog
	sessions *state.Store[dialog.Session]
	machine  *dialog.Machine

	health  *health.Server
	janitor *state.Janitor
}

// New initializes logging and storage, loads the catalog and builds the app.
// A catalog that fails to load aborts startup.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}

	opts := bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.DatabaseConfig(),
	}
	if !cfg.Storage.SkipMigrations {
		opts.Migrations = state.Migrations()
	}
	infra, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		_ = infra.Close()
		return nil, fmt.Errorf("bot: %w", err)
	}

	var backend state.Backend = state.NewMemoryBackend()
	if infra.DB != nil {
		backend = state.NewSQLBackend(infra.DB)
	}
	return newApp(cfg, infra, cat, backend), nil
}

func newApp(cfg *config.Config, infra *bootstrap.Result, cat *catalog.Catalog, backend state.Backend) *App {
	sessions := dialog.NewSessionStore(backend)
	return &App{
		cfg:      cfg,
		infra:    infra,
		catalog:  cat,
		sessions: sessions,
		machine:  dialog.NewMachine(sessions, cat),
	}
}

// Registry builds the command and callback registry.
func (a *App) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	for _, c := range dialog.Commands {
		reg.RegisterCommand("/"+c.Name, commands.Command{
			Handler:     a.onText,
			Description: c.Description,
		})
	}
	for _, tag := range action.Tags() {
		if err := reg.RegisterCallback(tag, a.onCallback); err != nil {
			logger.TWire.Warn("register.callback.failed",
				slog.String("key", tag),
				slog.String("err", err.Error()),
			)
		}
	}
	ui.Install(reg, a)
	return reg
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := &a.cfg.Config
	reg := a.Registry()

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: a.UnknownCallback(),
	}))

	return tg.RunOptions{
		Config:   core,
		Registry: reg,
		DispatcherOptions: tgsender.Options{
			QueueSize:    core.Sender.QueueSize,
			Workers:      core.Sender.Workers,
			MaxRetries:   core.Sender.MaxRetries,
			RetryBackoff: core.Sender.RetryBackoff,
		},
		Middlewares: tg.DefaultMiddlewares(core, a.onLimited),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) start(_ context.Context, rt tg.Runtime) error {
	if after := a.cfg.Sessions.PruneAfter; after > 0 {
		j, err := state.StartJanitor(a.sessions, a.cfg.Sessions.PruneSchedule, after)
		if err != nil {
			return err
		}
		a.janitor = j
	}

	if addr := a.cfg.Health.Listen; addr != "" {
		srv := health.New(a.sessions, a.stats(rt))
		if err := srv.Start(addr); err != nil {
			a.janitor.Stop()
			return fmt.Errorf("bot: health listen: %w", err)
		}
		a.health = srv
	}
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	a.janitor.Stop()
	return a.health.Shutdown(ctx)
}

func (a *App) stats(rt tg.Runtime) health.StatsFunc {
	return func() map[string]any {
		out := map[string]any{
			"trainings": a.catalog.Len(),
			"storage":   a.cfg.Storage.Driver,
		}
		if rt.Dispatcher != nil {
			out["send_queue"] = rt.Dispatcher.Pending()
		}
		return out
	}
}

// Close releases storage. It is called once the bot has stopped.
func (a *App) Close() error {
	return a.infra.Close()
}
