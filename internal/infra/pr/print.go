// Package pr — тонкая обёртка для вывода и ввода в интерактивной консоли.
// Инициализирует readline с отменяемым stdin, переназначает stdout/stderr на его
// буферы (чтобы логи не ломали строку приглашения) и даёт функции печати и
// блокирующего чтения строки/пароля.

package pr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/go-faster/errors"
	"github.com/kr/pretty"
	"golang.org/x/term"
)

// ErrNotInitialized возвращается функциями чтения до вызова Init.
var ErrNotInitialized = errors.New("pr: readline is not initialized")

var (
	// rl — активный инстанс readline. До Init() равен nil.
	rl *readline.Instance
	// out — текущий поток стандартного вывода.
	out io.Writer = os.Stdout
	// errOut — поток вывода ошибок.
	errOut io.Writer = os.Stderr
	// mu защищает замену ссылок на writer'ы и cancelableIn.
	mu sync.Mutex

	// cancelableIn — stdin, закрытие которого прерывает Readline (io.EOF).
	cancelableIn interface{ Close() error }
)

// Init настраивает readline и перенаправляет потоки вывода на его stdout/stderr.
func Init() error {
	cs := readline.NewCancelableStdin(os.Stdin)
	newRl, err := readline.NewEx(&readline.Config{Stdin: cs})
	if err != nil {
		_ = cs.Close()
		return err
	}

	mu.Lock()
	rl = newRl
	cancelableIn = cs
	out = rl.Stdout()
	errOut = rl.Stderr()
	mu.Unlock()

	return nil
}

// Close закрывает readline и возвращает вывод на os.Stdout/os.Stderr.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if rl != nil {
		_ = rl.Close()
		rl = nil
	}
	out = os.Stdout
	errOut = os.Stderr
}

// InterruptReadline закрывает cancelable stdin: Readline() получает io.EOF.
func InterruptReadline() {
	mu.Lock()
	in := cancelableIn
	mu.Unlock()
	if in != nil {
		_ = in.Close()
	}
}

// ReadLine печатает приглашение и блокируется до ввода строки. Отмена ctx
// прерывает чтение. Возвращает строку без пробелов по краям.
func ReadLine(ctx context.Context, prompt string) (string, error) {
	mu.Lock()
	inst := rl
	mu.Unlock()
	if inst == nil {
		return "", ErrNotInitialized
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			InterruptReadline()
		case <-done:
		}
	}()

	inst.SetPrompt(prompt)
	line, err := inst.Readline()
	inst.SetPrompt("")
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", errors.Wrap(err, "read line")
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword читает строку без эха, если stdin — терминал; иначе обычной
// строкой через readline (например, при вводе из pipe).
func ReadPassword(ctx context.Context, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(ctx, prompt)
	}
	Print(prompt)
	data, err := term.ReadPassword(fd)
	Println()
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(data), nil
}

// Stdout возвращает текущий writer стандартного вывода.
func Stdout() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// Stderr возвращает текущий writer ошибок.
func Stderr() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return errOut
}

// Print печатает значения в Stdout без перевода строки.
func Print(a ...any) {
	fmt.Fprint(Stdout(), a...)
}

// Println печатает значения в Stdout и добавляет перевод строки.
func Println(a ...any) {
	fmt.Fprintln(Stdout(), a...)
}

// Pf возвращает pretty-строку значения. Используется для debug-дампов ответов API.
func Pf(v any) string {
	return fmt.Sprintf("%# v", pretty.Formatter(v))
}
