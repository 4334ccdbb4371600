// internal/trigger/poller/poller.go
package poller

import (
	"context"
	"time"

	conf "github.com/bartek5186/www2pdv/internal/config"
	"github.com/bartek5186/www2pdv/internal/trigger"
	"github.com/rs/zerolog"
)

// Poller cyklicznie odpala przebieg synchronizacji. Gdy przebieg już
// trwa, TryStartSync jest no-opem – ticki się nie kolejkują.
type Poller struct {
	log zerolog.Logger
	eng trigger.Engine
	cfg *conf.Config

	ctx    context.Context
	cancel context.CancelFunc
}

func (p *Poller) Name() string { return "poller" }

func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info().Dur("interval", p.interval()).Msg("start")

	// pierwszy strzał od razu
	p.eng.TryStartSync()

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.log.Info().Msg("stop")
			return nil
		case <-ticker.C:
			p.eng.TryStartSync()
			// jeśli ktoś zmienił interwał w cfg → odśwież
			ticker.Reset(p.interval())
		}
	}
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) interval() time.Duration {
	sec := p.cfg.PollIntervalSeconds
	if sec <= 0 {
		sec = conf.DefaultPollInterval
	}
	return time.Duration(sec) * time.Second
}

func factory(log zerolog.Logger, eng trigger.Engine, cfg *conf.Config) (trigger.Source, error) {
	return &Poller{log: log, eng: eng, cfg: cfg}, nil
}

func init() {
	trigger.Register("poller", factory)
}
