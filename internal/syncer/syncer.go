// internal/syncer/syncer.go
package syncer

import (
	"context"
	"sync"
	"sync/atomic"

	conf "github.com/bartek5186/www2pdv/internal/config"
	"github.com/bartek5186/www2pdv/internal/processed"
	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/bartek5186/www2pdv/internal/trigger"
	_ "github.com/bartek5186/www2pdv/internal/trigger/poller"   // rejestracja
	_ "github.com/bartek5186/www2pdv/internal/trigger/pushfeed" // rejestracja
	"github.com/rs/zerolog"
)

// OrderStore – abstrakcja centralnej bazy zamówień. Każde wywołanie może
// zwrócić błąd łączności; przebieg traktuje go jak awarię kroku 1.
type OrderStore interface {
	Ping(ctx context.Context) error
	EnsureExportedColumn(ctx context.Context) error
	FetchActiveOrders(ctx context.Context, statuses []string) ([]store.Order, error)
	FetchItems(ctx context.Context, orderID int64) ([]store.OrderItem, error)
	FetchOrder(ctx context.Context, orderID int64) (*store.Order, error)
	CheckMaintenanceRestriction(ctx context.Context) (bool, error)
	FlagExported(ctx context.Context, orderID int64) error
}

// ExportQueue – lokalna kolejka offline na nieudane oflagowania.
type ExportQueue interface {
	Enqueue(orderID int64, payload []byte) error
}

// Status – zdarzenie dla powłoki (etykieta stanu + kolor sukces/błąd).
type Status struct {
	Message string
	Success bool
}

// wrapper na uruchomione źródło wyzwoleń (poller, pushfeed)
type runningSource struct {
	Name string
	Inst trigger.Source
}

type Syncer struct {
	log   zerolog.Logger
	store OrderStore
	queue ExportQueue
	file  *processed.File

	mu        sync.Mutex // ochrona cfg, processed, stanu lifecycle
	cfg       *conf.Config
	processed processed.Set
	running   bool
	draining  bool // Stop czeka na wygaszenie przebiegów; nowe są odmawiane
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup // goroutyny źródeł wyzwoleń
	passWg    sync.WaitGroup // goroutyny przebiegów (TryStartSync, reprocess)
	sources   []runningSource

	// bramka single-flight: najwyżej jeden przebieg eksportu naraz,
	// nakładające się wyzwolenia sklejają się w jeden zamiast kolejkować
	passMu sync.Mutex

	// licznik sekwencji w nazwach plików PDV; monotoniczny w ramach
	// procesu, zeruje się przy restarcie
	seq atomic.Int64

	stats Stats

	// granica UI: callbacki są opcjonalne i nigdy nie dostają błędów
	OnStatus   func(Status)
	OnProgress func(float64)
	OnMetrics  func(string)
	Notify     func(title, message string)
}

func New(log zerolog.Logger, cfg *conf.Config, st OrderStore, q ExportQueue, file *processed.File) *Syncer {
	s := &Syncer{
		log:   log,
		cfg:   cfg,
		store: st,
		queue: q,
		file:  file,
	}
	s.processed = file.Load()
	s.stats.setTotal(len(s.processed))
	return s
}

// Start uruchamia skonfigurowane źródła wyzwoleń. Ręczny TryStartSync
// działa także bez Start (powłoka może synchronizować przy wyłączonym
// harmonogramie).
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx
	s.cancel = cancel
	s.running = true

	srcs := s.buildSourcesLocked()
	s.sources = srcs
	s.mu.Unlock()

	s.log.Info().Int("sources", len(srcs)).Msg("Syncer: start")

	for i := range srcs {
		s.wg.Add(1)
		go func(src trigger.Source) {
			defer s.wg.Done()
			if err := src.Start(ctx); err != nil {
				s.log.Error().Err(err).Str("source", src.Name()).Msg("źródło zakończone z błędem")
			}
		}(srcs[i].Inst)
	}
	return nil
}

func (s *Syncer) buildSourcesLocked() []runningSource {
	var names []string
	if s.cfg.AutoSync {
		names = append(names, "poller")
	}
	if s.cfg.PushFeedURL != "" {
		names = append(names, "pushfeed")
	}

	var out []runningSource
	for _, name := range names {
		f, ok := trigger.Get(name)
		if !ok {
			s.log.Warn().Str("source", name).Msg("brak fabryki – pomijam")
			continue
		}
		inst, err := f(s.log.With().Str("source", name).Logger(), s, s.cfg)
		if err != nil {
			s.log.Error().Err(err).Str("source", name).Msg("błąd inicjalizacji")
			continue
		}
		out = append(out, runningSource{Name: name, Inst: inst})
	}
	return out
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.draining = true
	cancel := s.cancel
	srcs := s.sources
	s.sources = nil
	s.cancel = nil
	s.ctx = nil
	s.mu.Unlock()

	for _, rs := range srcs {
		rs.Inst.Stop()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.passWg.Wait()

	s.mu.Lock()
	s.draining = false
	s.mu.Unlock()
	s.log.Info().Msg("Syncer: stop")
}

// passAdd rejestruje goroutynę przebiegu na passWg. W oknie, w którym Stop
// czeka na wygaszenie, rejestracja jest odmawiana – Add równoległy z Wait
// na tej samej WaitGroup jest niedozwolony.
func (s *Syncer) passAdd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.passWg.Add(1)
	return true
}

func (s *Syncer) UpdateConfig(cfg *conf.Config) {
	s.mu.Lock()
	s.cfg = cfg
	isRunning := s.running
	s.mu.Unlock()

	s.log.Info().Msg("Syncer: config zaktualizowany")

	if isRunning {
		// szybki restart źródeł, żeby wzięły nową konfigurację
		s.Stop()
		_ = s.Start(context.Background())
	}
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runCtx – kontekst dla przebiegu: aktywny kontekst syncera albo tło,
// gdy harmonogram nie działa a użytkownik kliknął ręcznie.
func (s *Syncer) runCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *Syncer) activeStatuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ActiveStatuses
}

func (s *Syncer) exportDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ExportDir
}

func (s *Syncer) markExportedEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.MarkExportedInDB
}

func (s *Syncer) notifyEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.NotifyNative
}

func (s *Syncer) report(message string, success bool) {
	if success {
		s.log.Info().Msg(message)
	} else {
		s.log.Error().Msg(message)
	}
	if s.OnStatus != nil {
		s.OnStatus(Status{Message: message, Success: success})
	}
}

func (s *Syncer) notify(title, message string) {
	if s.Notify != nil && s.notifyEnabled() {
		s.Notify(title, message)
	}
}

func (s *Syncer) setProgress(v float64) {
	if s.OnProgress != nil {
		s.OnProgress(v)
	}
}

func (s *Syncer) recomputeMetrics() {
	if s.OnMetrics != nil {
		s.OnMetrics(s.stats.Snapshot().String())
	}
}

// Stats zwraca bieżącą migawkę liczników.
func (s *Syncer) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}
