package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalAuthenticatorPrompts(t *testing.T) {
	var prompts []string
	a := TerminalAuthenticator{
		PhoneNumber: "+10000000000",
		ReadLine: func(_ context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return " 12345 \n", nil
		},
		ReadPassword: func(_ context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return " secret ", nil
		},
	}
	ctx := context.Background()

	phone, err := a.Phone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+10000000000", phone)

	code, err := a.Code(ctx, &tg.AuthSentCode{})
	require.NoError(t, err)
	assert.Equal(t, "12345", code)

	password, err := a.Password(ctx)
	require.NoError(t, err)
	assert.Equal(t, " secret ", password)

	assert.Equal(t, []string{"Code: ", "2FA Password: "}, prompts)
}

func TestTerminalAuthenticatorReadError(t *testing.T) {
	eof := errors.New("EOF")
	a := TerminalAuthenticator{
		ReadLine: func(context.Context, string) (string, error) { return "", eof },
	}
	_, err := a.Code(context.Background(), nil)
	require.ErrorIs(t, err, eof)
}

func TestTerminalAuthenticatorRefusesSignUp(t *testing.T) {
	a := NewTerminalAuthenticator("  ")
	ctx := context.Background()

	_, err := a.Phone(ctx)
	require.Error(t, err)

	_, err = a.SignUp(ctx)
	require.ErrorIs(t, err, ErrSignUpRefused)
	require.ErrorIs(t, a.AcceptTermsOfService(ctx, tg.HelpTermsOfService{}), ErrSignUpRefused)
}
