package cleanup_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"telegram-nuke/internal/domain/cleanup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter отвечает заранее заданными строками по порядку.
type scriptedPrompter struct {
	answers []string
	prompts []string
	err     error
}

func (p *scriptedPrompter) Ask(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// recorder собирает вызовы операций, паузы и журнал в одну ленту событий.
type recorder struct {
	events   []string
	fail     map[string]error
	attempts []cleanup.Attempt
}

func (r *recorder) action(ctx context.Context, item cleanup.Removal) error {
	r.events = append(r.events, "call:"+item.Name())
	return r.fail[item.Name()]
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.events = append(r.events, "sleep:"+d.String())
	return nil
}

func (r *recorder) Record(_ context.Context, a cleanup.Attempt) error {
	r.attempts = append(r.attempts, a)
	return nil
}

func removals(names ...string) []cleanup.Removal {
	out := make([]cleanup.Removal, 0, len(names))
	for i, n := range names {
		out = append(out, cleanup.Removal{
			Dialog:   cleanup.Dialog{Key: channel(int64(i + 1)), Name: n, IsChannel: true},
			Category: cleanup.CategoryChannel,
		})
	}
	return out
}

func TestConfirmed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"yes", "YES", " Yes \n", "yEs"} {
		assert.True(t, cleanup.Confirmed(in), "%q", in)
	}
	for _, in := range []string{"", "no", "y", "yes please", "ye s"} {
		assert.False(t, cleanup.Confirmed(in), "%q", in)
	}
}

func TestExecutorPacesEveryCallInOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{fail: map[string]error{"b": errors.New("CHANNEL_PRIVATE")}}
	var out bytes.Buffer
	exec := cleanup.NewExecutor(cleanup.Options{
		Prompter: &scriptedPrompter{answers: []string{"  YES "}},
		Sleep:    rec.sleep,
		Delay:    time.Second,
		Out:      &out,
		Recorder: rec,
		Clock:    func() time.Time { return time.Unix(100, 0) },
	})

	got := exec.Run(context.Background(), cleanup.LeavePartition(removals("a", "b", "c"), rec.action))

	assert.Equal(t, cleanup.Outcome{
		Partition: "channels/groups",
		State:     cleanup.StateDone,
		Attempted: 3,
		Failed:    1,
	}, got)
	assert.Equal(t, 2, got.Succeeded())
	assert.Equal(t, []string{
		"call:a", "sleep:1s",
		"call:b", "sleep:1s",
		"call:c", "sleep:1s",
	}, rec.events)

	require.Len(t, rec.attempts, 3)
	assert.Equal(t, "CHANNEL_PRIVATE", rec.attempts[1].Error)
	assert.Empty(t, rec.attempts[0].Error)
	assert.Equal(t, time.Unix(100, 0), rec.attempts[2].At)

	assert.Contains(t, out.String(), "You are about to leave 3 channels/groups.")
	assert.Contains(t, out.String(), "✗ Left channel/group: a")
	assert.Contains(t, out.String(), "✗ Failed on b: CHANNEL_PRIVATE")
	assert.Contains(t, out.String(), "Finished leaving channels/groups.")
}

func TestExecutorCancelsOnAnythingButYes(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{"no", "", "y", "yess"} {
		rec := &recorder{}
		var out bytes.Buffer
		exec := cleanup.NewExecutor(cleanup.Options{
			Prompter: &scriptedPrompter{answers: []string{answer}},
			Sleep:    rec.sleep,
			Out:      &out,
		})

		got := exec.Run(context.Background(), cleanup.DeletePartition(removals("a", "b"), rec.action))

		assert.Equal(t, cleanup.StateCancelled, got.State, "answer %q", answer)
		assert.Zero(t, got.Attempted)
		assert.Empty(t, rec.events, "answer %q must not issue calls", answer)
		assert.Contains(t, out.String(), "Deleting private chats cancelled.")
	}
}

func TestExecutorPromptErrorCancels(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	exec := cleanup.NewExecutor(cleanup.Options{
		Prompter: &scriptedPrompter{err: errors.New("EOF")},
		Sleep:    rec.sleep,
	})

	got := exec.Run(context.Background(), cleanup.LeavePartition(removals("a"), rec.action))
	assert.Equal(t, cleanup.StateCancelled, got.State)
	assert.Empty(t, rec.events)
}

func TestExecutorSkipsEmptyPartitionSilently(t *testing.T) {
	t.Parallel()

	prompter := &scriptedPrompter{answers: []string{"yes"}}
	var out bytes.Buffer
	exec := cleanup.NewExecutor(cleanup.Options{Prompter: prompter, Out: &out})

	got := exec.Run(context.Background(), cleanup.LeavePartition(nil, nil))

	assert.Equal(t, cleanup.StateSkipped, got.State)
	assert.Empty(t, prompter.prompts)
	assert.Empty(t, out.String())
}

func TestExecutorDryRun(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	prompter := &scriptedPrompter{answers: []string{"yes"}}
	exec := cleanup.NewExecutor(cleanup.Options{Prompter: prompter, Sleep: rec.sleep, DryRun: true})

	got := exec.Run(context.Background(), cleanup.DeletePartition(removals("a"), rec.action))

	assert.Equal(t, cleanup.StateDryRun, got.State)
	assert.Empty(t, prompter.prompts)
	assert.Empty(t, rec.events)
}

func TestExecutorInterruptedDuringPause(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []string
	action := func(_ context.Context, r cleanup.Removal) error {
		calls = append(calls, r.Name())
		return nil
	}
	sleep := func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	exec := cleanup.NewExecutor(cleanup.Options{
		Prompter: &scriptedPrompter{answers: []string{"yes"}},
		Sleep:    sleep,
	})

	got := exec.Run(ctx, cleanup.LeavePartition(removals("a", "b", "c"), action))

	assert.Equal(t, cleanup.StateInterrupted, got.State)
	assert.Equal(t, 1, got.Attempted)
	assert.Equal(t, []string{"a"}, calls)
}

func TestExecutorPartitionsAreIndependent(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	prompter := &scriptedPrompter{answers: []string{"no", "yes"}}
	exec := cleanup.NewExecutor(cleanup.Options{Prompter: prompter, Sleep: rec.sleep})

	leave := exec.Run(context.Background(), cleanup.LeavePartition(removals("ch1", "ch2"), rec.action))
	del := exec.Run(context.Background(), cleanup.DeletePartition(removals("dm1"), rec.action))

	assert.Equal(t, cleanup.StateCancelled, leave.State)
	assert.Equal(t, cleanup.StateDone, del.State)
	assert.Equal(t, []string{"call:dm1", "sleep:0s"}, rec.events)
	assert.Len(t, prompter.prompts, 2)
}
