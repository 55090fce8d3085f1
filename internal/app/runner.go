package app

import (
	"context"
	"time"

	"telegram-nuke/internal/adapters/cli"
	tgauth "telegram-nuke/internal/adapters/telegram/auth"
	"telegram-nuke/internal/adapters/telegram/gateway"
	"telegram-nuke/internal/domain/cleanup"
	"telegram-nuke/internal/infra/config"
	"telegram-nuke/internal/infra/journal"
	"telegram-nuke/internal/infra/logger"
	"telegram-nuke/internal/infra/pr"
	"telegram-nuke/internal/infra/telegram/session"
	tgruntime "telegram-nuke/internal/infra/telegram/runtime"

	"github.com/go-faster/errors"
	tdsession "github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// Runner выполняет шаги сценария внутри client.Run.
type Runner struct {
	env      config.EnvConfig
	dryRun   bool
	client   *telegram.Client
	sessions *session.FileStore
	mem      tdsession.Storage
}

// NewRunner связывает клиента, файл сессии и её копию в памяти.
func NewRunner(
	env config.EnvConfig,
	dryRun bool,
	client *telegram.Client,
	sessions *session.FileStore,
	mem tdsession.Storage,
) *Runner {
	return &Runner{
		env:      env,
		dryRun:   dryRun,
		client:   client,
		sessions: sessions,
		mem:      mem,
	}
}

// Run подключается, авторизуется, сохраняет сессию и выполняет чистку.
// Соединение закрывается по возврату из колбэка.
func (r *Runner) Run(ctx context.Context) error {
	return r.client.Run(ctx, func(ctx context.Context) error {
		self, err := r.loginSelf(ctx)
		if err != nil {
			return err
		}

		if err = r.sessions.Persist(ctx, r.mem); err != nil {
			return errors.Wrap(err, "persist session")
		}

		return r.cleanup(ctx, self.ID)
	})
}

func (r *Runner) loginSelf(ctx context.Context) (*tg.User, error) {
	authenticator := tgauth.NewTerminalAuthenticator(r.env.PhoneNumber)
	if err := r.client.Auth().IfNecessary(ctx, authenticator.Flow()); err != nil {
		logger.Error("Authentication failed", zap.Error(err))
		return nil, errors.Wrap(err, "auth")
	}

	self, err := r.client.Self(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get self")
	}
	logger.Info("Logged in as:",
		zap.String("FirstName", self.FirstName),
		zap.String("LastName", self.LastName),
		zap.String("Username", self.Username),
		zap.Int64("ID", self.ID),
	)
	return self, nil
}

func (r *Runner) cleanup(ctx context.Context, selfID int64) error {
	var recorder cleanup.Recorder
	if r.env.JournalFile != "" {
		j, err := journal.Open(r.env.JournalFile, time.Now())
		if err != nil {
			return errors.Wrap(err, "open journal")
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Warn("Journal close failed", zap.Error(closeErr))
			}
		}()
		logger.Info("Journal enabled", zap.String("path", r.env.JournalFile), zap.String("run", j.Run()))
		recorder = j
	}

	exec := cleanup.NewExecutor(cleanup.Options{
		Prompter: cli.NewPrompter(),
		Sleep:    tgruntime.Sleep,
		Delay:    r.env.ActionDelay,
		Out:      pr.Stdout(),
		Recorder: recorder,
		DryRun:   r.dryRun,
	})
	svc := cleanup.NewService(
		gateway.New(r.client.API(), selfID),
		exec,
		cleanup.Settings{Keyword: r.env.FolderKeyword, AllowEmptyKeep: r.env.AllowEmptyKeep},
		pr.Stdout(),
	)

	report, err := svc.Run(ctx)
	logSummary(report)
	if err != nil {
		return err
	}
	pr.Println("Done.")
	return nil
}

func logSummary(report cleanup.Report) {
	fields := []zap.Field{
		zap.Int("folders", len(report.Folders)),
		zap.Int("keep_set", report.KeepSet.Len()),
		zap.Int("kept", len(report.Plan.Kept)),
		zap.Int("to_leave", len(report.Plan.Leave)),
		zap.Int("to_delete", len(report.Plan.Delete)),
	}
	for _, o := range report.Outcomes {
		fields = append(fields, zap.Dict(o.Partition,
			zap.String("state", string(o.State)),
			zap.Int("succeeded", o.Succeeded()),
			zap.Int("failed", o.Failed),
		))
	}
	logger.Info("Run summary", fields...)
}
