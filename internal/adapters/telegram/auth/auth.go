// Package auth — терминальный аутентификатор (auth.UserAuthenticator) для gotd.
// Номер телефона берётся из конфигурации, код и пароль 2FA читаются из консоли.
// Регистрацию новых аккаунтов и принятие ToS утилита не выполняет.
package auth

import (
	"context"
	"strings"

	"telegram-nuke/internal/infra/pr"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

const (
	codePrompt     = "Code: "
	passwordPrompt = "2FA Password: "
)

// ErrSignUpRefused возвращается, если номер не зарегистрирован в Telegram.
var ErrSignUpRefused = errors.New("phone number is not registered; sign up is not supported")

// LineReader читает строку ввода с приглашением.
type LineReader func(ctx context.Context, prompt string) (string, error)

// TerminalAuthenticator реализует auth.UserAuthenticator.
type TerminalAuthenticator struct {
	// PhoneNumber — номер, с которым выполняется вход. Формат не проверяется.
	PhoneNumber string
	// ReadLine и ReadPassword по умолчанию — pr.ReadLine и pr.ReadPassword.
	ReadLine     LineReader
	ReadPassword LineReader
}

var _ auth.UserAuthenticator = TerminalAuthenticator{}

// NewTerminalAuthenticator создаёт аутентификатор, читающий из общего readline.
func NewTerminalAuthenticator(phone string) TerminalAuthenticator {
	return TerminalAuthenticator{
		PhoneNumber:  strings.TrimSpace(phone),
		ReadLine:     pr.ReadLine,
		ReadPassword: pr.ReadPassword,
	}
}

// Flow собирает auth.Flow для client.Auth().IfNecessary.
func (t TerminalAuthenticator) Flow() auth.Flow {
	return auth.NewFlow(t, auth.SendCodeOptions{})
}

func (t TerminalAuthenticator) Phone(_ context.Context) (string, error) {
	if t.PhoneNumber == "" {
		return "", errors.New("phone number is empty")
	}
	return t.PhoneNumber, nil
}

// Code запрашивает код подтверждения, пришедший в Telegram или по SMS.
func (t TerminalAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	code, err := t.lineReader()(ctx, codePrompt)
	if err != nil {
		return "", errors.Wrap(err, "read code")
	}
	return strings.TrimSpace(code), nil
}

// Password запрашивается только если у аккаунта включена 2FA.
func (t TerminalAuthenticator) Password(ctx context.Context) (string, error) {
	read := t.ReadPassword
	if read == nil {
		read = pr.ReadPassword
	}
	password, err := read(ctx, passwordPrompt)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return password, nil
}

func (t TerminalAuthenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return ErrSignUpRefused
}

func (t TerminalAuthenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, ErrSignUpRefused
}

func (t TerminalAuthenticator) lineReader() LineReader {
	if t.ReadLine == nil {
		return pr.ReadLine
	}
	return t.ReadLine
}
