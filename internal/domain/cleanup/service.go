package cleanup

import (
	"context"
	"io"

	"telegram-nuke/internal/infra/logger"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// ErrEmptyKeepSet — ни одна папка не дала чатов для сохранения. Без явного
// разрешения сценарий в этом случае останавливается до любых подтверждений.
var ErrEmptyKeepSet = errors.New("keep-set is empty: no folder matched the keyword")

// Gateway — всё, что сценарию нужно от Telegram.
type Gateway interface {
	Folders(ctx context.Context) ([]Folder, error)
	Dialogs(ctx context.Context) ([]Dialog, error)
	Leave(ctx context.Context, r Removal) error
	DeleteHistory(ctx context.Context, r Removal) error
}

// Settings — неизменяемые параметры прогона.
type Settings struct {
	Keyword        string
	AllowEmptyKeep bool
}

// Report — сводка прогона.
type Report struct {
	Folders  []Folder
	Matched  []Folder
	KeepSet  KeepSet
	Plan     Plan
	Outcomes []Outcome
}

// Service связывает шлюз Telegram, классификацию и исполнитель.
type Service struct {
	gw       Gateway
	exec     *Executor
	settings Settings
	out      io.Writer
}

// NewService создаёт сценарий чистки.
func NewService(gw Gateway, exec *Executor, settings Settings, out io.Writer) *Service {
	if out == nil {
		out = io.Discard
	}
	return &Service{gw: gw, exec: exec, settings: settings, out: out}
}

// Run выполняет полный сценарий: папки → keep-set → диалоги → план → разделы.
// Keep-set вычисляется целиком до запроса диалогов. Ошибки получения папок и
// диалогов фатальны; ошибки отдельных операций учитываются в Outcome.
func (s *Service) Run(ctx context.Context) (Report, error) {
	var report Report

	folders, err := s.gw.Folders(ctx)
	if err != nil {
		return report, errors.Wrap(err, "get folders")
	}
	report.Folders = folders
	PrintFolders(s.out, folders, s.settings.Keyword)

	keep, matched := ResolveKeepSet(folders, s.settings.Keyword)
	report.KeepSet = keep
	report.Matched = matched
	PrintMatched(s.out, matched, keep)
	logger.Debug("keep-set resolved",
		zap.Int("folders", len(folders)),
		zap.Int("matched", len(matched)),
		zap.Stringers("peers", keep.Keys()),
	)

	if keep.Len() == 0 && !s.settings.AllowEmptyKeep {
		logger.Warn("keep-set is empty; every dialog would be removed. Set ALLOW_EMPTY_KEEP=true to proceed anyway",
			zap.String("keyword", s.settings.Keyword))
		return report, ErrEmptyKeepSet
	}

	dialogs, err := s.gw.Dialogs(ctx)
	if err != nil {
		return report, errors.Wrap(err, "get dialogs")
	}

	plan := Classify(dialogs, keep)
	report.Plan = plan
	PrintPlan(s.out, plan)

	report.Outcomes = append(report.Outcomes, s.exec.Run(ctx, LeavePartition(plan.Leave, s.gw.Leave)))
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	report.Outcomes = append(report.Outcomes, s.exec.Run(ctx, DeletePartition(plan.Delete, s.gw.DeleteHistory)))

	return report, ctx.Err()
}
