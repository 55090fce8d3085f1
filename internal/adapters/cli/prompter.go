// Package cli связывает консольный ввод (общий readline) с подтверждениями чистки.
package cli

import (
	"context"

	"telegram-nuke/internal/domain/cleanup"
	"telegram-nuke/internal/infra/pr"
)

// Prompter реализует cleanup.Prompter поверх pr.ReadLine.
type Prompter struct {
	read func(ctx context.Context, prompt string) (string, error)
}

var _ cleanup.Prompter = (*Prompter)(nil)

// NewPrompter возвращает Prompter, читающий из общего readline.
func NewPrompter() *Prompter {
	return &Prompter{read: pr.ReadLine}
}

// Ask выводит приглашение и блокируется до ввода строки или отмены ctx.
// Таймаута нет: прогон рассчитан на присутствие человека.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	return p.read(ctx, prompt)
}
