//go:build !windows || dev

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	conf "github.com/bartek5186/www2pdv/internal/config"
	logs "github.com/bartek5186/www2pdv/internal/logs"
	"github.com/bartek5186/www2pdv/internal/processed"
	"github.com/bartek5186/www2pdv/internal/queue"
	"github.com/bartek5186/www2pdv/internal/store"
	syncer "github.com/bartek5186/www2pdv/internal/syncer"
)

var ver = "1.0.0"

func main() {
	appDir := mustAppDataDir("www2pdv")
	log := logs.New(logs.DailyPath(filepath.Join(appDir, "logs"), time.Now()), true)

	cfgPath := filepath.Join(appDir, "config.json")
	cfg, firstRun, err := conf.LoadOrCreate(cfgPath)
	if err != nil {
		panic(err)
	}
	if firstRun {
		log.Info().Msgf("Utworzono domyślną konfigurację: %s", cfgPath)
	}

	q, err := queue.OpenAt(appDir)
	if err != nil {
		log.Fatal().Err(err).Msg("offline queue open error")
	}
	log.Info().Str("db", q.Path).Msg("kolejka offline gotowa")

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB open error")
	}

	log.Info().Msgf("WWW2PDV Sync %s (CLI) uruchomiony", ver)

	// kontekst sterujący życiem procesu (CTRL+C / zamknięcie sesji)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := syncer.New(log, cfg, st, q,
		processed.NewFile(filepath.Join(appDir, "processed_orders.json")))

	// pętla retry działa przez cały czas życia procesu, niezależnie od
	// tego, czy harmonogram synchronizacji jest włączony
	retry := queue.NewRetryWorker(log, q, st.FlagExported)
	go retry.Run(ctx)

	if err := s.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Start error")
	}

	// jeden przebieg od razu po starcie
	s.TryStartSync()

	<-ctx.Done()
	s.Stop()
	_ = st.Close()
	_ = q.Close()
	log.Info().Msg("WWW2PDV Sync zakończony")
}

func mustAppDataDir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}
