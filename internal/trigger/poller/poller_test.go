package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	conf "github.com/bartek5186/www2pdv/internal/config"
	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/bartek5186/www2pdv/internal/trigger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	syncCalls atomic.Int64
}

func (f *fakeEngine) TryStartSync() { f.syncCalls.Add(1) }

func (f *fakeEngine) ExportSingle(p store.OrderPayload) error { return nil }

func TestFactoryRegistered(t *testing.T) {
	f, ok := trigger.Get("poller")
	require.True(t, ok)

	src, err := f(zerolog.Nop(), &fakeEngine{}, &conf.Config{PollIntervalSeconds: 9})
	require.NoError(t, err)
	assert.Equal(t, "poller", src.Name())
}

func TestIntervalFallsBackToDefault(t *testing.T) {
	p := &Poller{cfg: &conf.Config{PollIntervalSeconds: 0}}
	assert.Equal(t, time.Duration(conf.DefaultPollInterval)*time.Second, p.interval())

	p.cfg.PollIntervalSeconds = 30
	assert.Equal(t, 30*time.Second, p.interval())
}

func TestStartFiresImmediatelyAndStops(t *testing.T) {
	eng := &fakeEngine{}
	p := &Poller{log: zerolog.Nop(), eng: eng, cfg: &conf.Config{PollIntervalSeconds: 60}}

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	require.Eventually(t, func() bool { return eng.syncCalls.Load() >= 1 },
		time.Second, time.Millisecond, "pierwszy strzał ma iść od razu, bez czekania na tick")

	p.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller nie zakończył się po Stop")
	}
}
