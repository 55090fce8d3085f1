package app

import (
	"testing"

	"telegram-nuke/internal/infra/config"

	"github.com/gotd/contrib/middleware/floodwait"
	tdsession "github.com/gotd/td/session"
	"github.com/stretchr/testify/assert"
)

func TestClientOptionsDefaults(t *testing.T) {
	a := NewApp(&config.Config{Env: config.EnvConfig{
		ConnectionRetries: 5,
		ThrottleRPS:       10,
	}}, false)
	mem := new(tdsession.StorageMemory)

	opts := a.clientOptions(mem)

	assert.Same(t, mem, opts.SessionStorage)
	assert.Equal(t, 5, opts.MaxRetries)
	assert.Len(t, opts.Middlewares, 1)
	assert.Empty(t, opts.DCList.Options)
	assert.Equal(t, Version, opts.Device.AppVersion)
}

func TestClientOptionsFloodWaitAndTestDC(t *testing.T) {
	a := NewApp(&config.Config{Env: config.EnvConfig{
		ConnectionRetries: 1,
		ThrottleRPS:       3,
		FloodWaitEnable:   true,
		TestDC:            true,
	}}, true)
	a.waiter = floodwait.NewWaiter()

	opts := a.clientOptions(new(tdsession.StorageMemory))

	assert.Len(t, opts.Middlewares, 2)
	assert.Same(t, a.waiter, opts.Middlewares[0])
	assert.NotEmpty(t, opts.DCList.Options)
}
