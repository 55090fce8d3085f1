package cleanup

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"telegram-nuke/internal/infra/logger"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// DefaultActionDelay — пауза после каждого разрушительного вызова. Это выбранная
// политика темпа, а не лимит, сообщённый сервером.
const DefaultActionDelay = 1000 * time.Millisecond

// confirmWord — единственный ответ, разрешающий выполнение раздела.
const confirmWord = "yes"

// Prompter задаёт человеку вопрос и блокируется до ответа.
type Prompter interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Sleeper ждёт d или отмены ctx.
type Sleeper func(ctx context.Context, d time.Duration) error

// Action выполняет одну разрушительную операцию над диалогом.
type Action func(ctx context.Context, r Removal) error

// Attempt — запись об одной попытке операции.
type Attempt struct {
	Partition string    `json:"partition"`
	Kind      PeerKind  `json:"kind"`
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Recorder сохраняет попытки (журнал). Ошибки записи не прерывают чистку.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// State — состояние раздела в конечном автомате исполнителя.
type State string

const (
	StatePending     State = "pending"
	StateSkipped     State = "skipped"
	StateDryRun      State = "dry-run"
	StatePrompted    State = "prompted"
	StateCancelled   State = "cancelled"
	StateExecuting   State = "executing"
	StateInterrupted State = "interrupted"
	StateDone        State = "done"
)

// Partition — набор однотипных удалений с общей операцией и текстами для консоли.
type Partition struct {
	Name   string
	Items  []Removal
	Action Action

	intro     string // "You are about to ..." (формат с %d)
	prompt    string
	cancelled string
	starting  string
	succeeded string // формат с %s (имя диалога)
	finished  string
}

// LeavePartition — раздел каналов и групп, которые нужно покинуть.
func LeavePartition(items []Removal, action Action) Partition {
	return Partition{
		Name:      "channels/groups",
		Items:     items,
		Action:    action,
		intro:     "You are about to leave %d channels/groups.",
		prompt:    "Type 'yes' to confirm leaving these channels/groups: ",
		cancelled: "Leaving channels/groups cancelled.",
		starting:  "Starting to leave channels/groups...",
		succeeded: "✗ Left channel/group: %s",
		finished:  "Finished leaving channels/groups.",
	}
}

// DeletePartition — раздел личных чатов, историю которых нужно удалить.
func DeletePartition(items []Removal, action Action) Partition {
	return Partition{
		Name:      "private chats",
		Items:     items,
		Action:    action,
		intro:     "You are about to delete %d private chats.",
		prompt:    "Type 'yes' to confirm deleting these private chats: ",
		cancelled: "Deleting private chats cancelled.",
		starting:  "Starting to delete private chats...",
		succeeded: "✗ Deleted private chat: %s",
		finished:  "Finished deleting private chats.",
	}
}

// Outcome — итог обработки раздела.
type Outcome struct {
	Partition string
	State     State
	Attempted int
	Failed    int
}

// Succeeded возвращает число успешных операций.
func (o Outcome) Succeeded() int {
	return o.Attempted - o.Failed
}

// Options — зависимости исполнителя.
type Options struct {
	Prompter Prompter
	Sleep    Sleeper
	Delay    time.Duration
	Out      io.Writer
	Recorder Recorder
	DryRun   bool
	Clock    func() time.Time
}

// Executor последовательно выполняет разделы: подтверждение, затем операции по
// одной с паузой после каждой. Параллельных вызовов нет.
type Executor struct {
	prompter Prompter
	sleep    Sleeper
	delay    time.Duration
	out      io.Writer
	recorder Recorder
	dryRun   bool
	clock    func() time.Time
}

// NewExecutor собирает исполнитель. Out по умолчанию io.Discard, Clock — time.Now.
func NewExecutor(opts Options) *Executor {
	e := &Executor{
		prompter: opts.Prompter,
		sleep:    opts.Sleep,
		delay:    opts.Delay,
		out:      opts.Out,
		recorder: opts.Recorder,
		dryRun:   opts.DryRun,
		clock:    opts.Clock,
	}
	if e.out == nil {
		e.out = io.Discard
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.delay < 0 {
		e.delay = 0
	}
	return e
}

// Confirmed сообщает, является ли ответ подтверждением: "yes" без учёта
// регистра и пробелов по краям.
func Confirmed(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), confirmWord)
}

// Run проводит раздел через автомат:
// Pending → (пусто? Skipped | dry-run? DryRun | Prompted) → (да? Executing | Cancelled) → Done.
// Каждый элемент подтверждённого раздела получает ровно одну попытку, после
// каждой попытки выдерживается пауза. Отмена ctx во время паузы даёт Interrupted.
func (e *Executor) Run(ctx context.Context, p Partition) Outcome {
	out := Outcome{Partition: p.Name, State: StatePending}

	if len(p.Items) == 0 {
		out.State = StateSkipped
		return out
	}

	e.printf("\n"+p.intro+"\n", len(p.Items))

	if e.dryRun {
		e.printf("Dry run: nothing will be changed.\n")
		out.State = StateDryRun
		return out
	}

	out.State = StatePrompted
	answer, err := e.ask(ctx, p.prompt)
	if err != nil {
		logger.Warn("confirmation prompt failed", zap.String("partition", p.Name), zap.Error(err))
	}
	if err != nil || !Confirmed(answer) {
		e.printf("%s\n", p.cancelled)
		out.State = StateCancelled
		return out
	}

	out.State = StateExecuting
	e.printf("\n%s\n\n", p.starting)

	for _, item := range p.Items {
		callErr := e.call(ctx, p, item)
		out.Attempted++
		if callErr != nil {
			out.Failed++
			e.printf("✗ Failed on %s: %s\n", item.Name(), callErr.Error())
			logger.Debug("cleanup action failed",
				zap.String("partition", p.Name),
				zap.String("peer", item.Dialog.Key.String()),
				zap.Error(callErr),
			)
		} else {
			e.printf(p.succeeded+"\n", item.Name())
		}
		e.record(ctx, p, item, callErr)

		if sleepErr := e.pause(ctx); sleepErr != nil {
			logger.Warn("cleanup interrupted",
				zap.String("partition", p.Name),
				zap.Int("attempted", out.Attempted),
				zap.Int("remaining", len(p.Items)-out.Attempted),
				zap.Error(sleepErr),
			)
			out.State = StateInterrupted
			return out
		}
	}

	e.printf("%s\n", p.finished)
	logger.Info("partition finished",
		zap.String("partition", p.Name),
		zap.Int("succeeded", out.Succeeded()),
		zap.Int("failed", out.Failed),
	)
	out.State = StateDone
	return out
}

func (e *Executor) ask(ctx context.Context, prompt string) (string, error) {
	if e.prompter == nil {
		return "", errors.New("no prompter configured")
	}
	return e.prompter.Ask(ctx, prompt)
}

func (e *Executor) call(ctx context.Context, p Partition, item Removal) error {
	if p.Action == nil {
		return errors.Errorf("no action for %s", p.Name)
	}
	return p.Action(ctx, item)
}

func (e *Executor) pause(ctx context.Context) error {
	if e.sleep == nil {
		return ctx.Err()
	}
	return e.sleep(ctx, e.delay)
}

func (e *Executor) record(ctx context.Context, p Partition, item Removal, callErr error) {
	if e.recorder == nil {
		return
	}
	a := Attempt{
		Partition: p.Name,
		Kind:      item.Dialog.Key.Kind,
		ID:        item.Dialog.Key.ID,
		Name:      item.Name(),
		At:        e.clock(),
	}
	if callErr != nil {
		a.Error = callErr.Error()
	}
	if err := e.recorder.Record(ctx, a); err != nil {
		logger.Warn("journal record failed", zap.String("name", a.Name), zap.Error(err))
	}
}

func (e *Executor) printf(format string, a ...any) {
	fmt.Fprintf(e.out, format, a...)
}
