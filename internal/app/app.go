// Package app собирает MTProto-клиент и запускает одноразовый сценарий чистки:
// сессия → авторизация → папки и диалоги → подтверждения → операции.
package app

import (
	"context"

	"telegram-nuke/internal/infra/config"
	"telegram-nuke/internal/infra/logger"
	"telegram-nuke/internal/infra/telegram/session"

	"github.com/go-faster/errors"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

// Version подставляется при сборке через -ldflags.
var Version = "dev"

// App хранит конфигурацию прогона и режим dry-run.
type App struct {
	cfg    *config.Config
	dryRun bool
	waiter *floodwait.Waiter // nil, если FLOOD_WAIT_ENABLE=false
}

// NewApp создаёт приложение. Вся сборка выполняется в Run.
func NewApp(cfg *config.Config, dryRun bool) *App {
	return &App{cfg: cfg, dryRun: dryRun}
}

// Run блокируется до конца сценария или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	env := a.cfg.GetEnv()
	logger.Info("Nuke initializing...",
		zap.String("version", Version),
		zap.Bool("dry_run", a.dryRun),
		zap.String("keyword", env.FolderKeyword),
	)

	sessions := session.NewFileStore(env.SessionFile)
	mem, err := sessions.Memory(ctx)
	if err != nil {
		return errors.Wrap(err, "load session")
	}

	if env.FloodWaitEnable {
		a.waiter = floodwait.NewWaiter()
	}

	client := telegram.NewClient(env.APIID, env.APIHash, a.clientOptions(mem))
	runner := NewRunner(env, a.dryRun, client, sessions, mem)

	if a.waiter == nil {
		return runner.Run(ctx)
	}
	return a.waiter.Run(ctx, runner.Run)
}

// clientOptions — опции gotd: сессия в памяти, ретраи соединения, ограничение
// частоты запросов и, по желанию, ожидание FLOOD_WAIT.
func (a *App) clientOptions(storage telegram.SessionStorage) telegram.Options {
	env := a.cfg.GetEnv()

	middlewares := make([]telegram.Middleware, 0, 2) //nolint:mnd // waiter + ratelimit
	if a.waiter != nil {
		middlewares = append(middlewares, a.waiter)
	}
	middlewares = append(middlewares, ratelimit.New(
		rate.Limit(env.ThrottleRPS),
		env.ThrottleRPS*2, //nolint:mnd // burst = 2*rate
	))

	options := telegram.Options{
		SessionStorage: storage,
		MaxRetries:     env.ConnectionRetries,
		Middlewares:    middlewares,
		Device: telegram.DeviceConfig{
			DeviceModel:   "telegram-nuke",
			SystemVersion: "cli",
			AppVersion:    Version,
		},
	}
	if env.TestDC {
		options.DCList = dcs.Test()
	}
	return options
}
