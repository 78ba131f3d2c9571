package server

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sethnnections/authkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Env = "prod"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig()
	c.RefreshSecret = c.AccessSecret

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestNewApp_RedisLedgerUnreachable(t *testing.T) {
	c := testConfig()
	c.Ledger = config.LedgerRedis
	c.RedisAddr = "127.0.0.1:1"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis init error")
}

func TestApp_RunsAndStops(t *testing.T) {
	mr := miniredis.RunT(t)

	c := testConfig()
	c.Ledger = config.LedgerRedis
	c.RedisAddr = mr.Addr()

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(7 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	assert.Empty(t, app.closers)
}
