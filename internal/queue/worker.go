// internal/queue/worker.go
package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FlagFunc – operacja oflagowania exported w centralnej bazie; ta sama,
// której używa orkiestrator. Retry nie wypisuje pliku ponownie: plik
// powstał trwale zanim wpis trafił do kolejki.
type FlagFunc func(ctx context.Context, orderID int64) error

// RetryWorker w pętli dobiera zaległe potwierdzenia i ponawia wyłącznie
// oflagowanie. Wpisy nigdy nie wygasają – próbujemy aż do skutku.
type RetryWorker struct {
	log       zerolog.Logger
	queue     *Queue
	flag      FlagFunc
	idleSleep time.Duration
	batchSize int
}

func NewRetryWorker(log zerolog.Logger, q *Queue, flag FlagFunc) *RetryWorker {
	return &RetryWorker{
		log:       log.With().Str("worker", "offline-retry").Logger(),
		queue:     q,
		flag:      flag,
		idleSleep: 10 * time.Second,
		batchSize: 10,
	}
}

// Run blokuje do ctx.Done(). Każdy błąd na poziomie cyklu jest logowany
// i kwitowany odczekaniem – pętli nie kończy nic poza zamknięciem procesu.
func (w *RetryWorker) Run(ctx context.Context) {
	w.log.Info().Msg("start")
	for {
		if !w.cycle(ctx) {
			w.log.Info().Msg("stop")
			return
		}
	}
}

// cycle wykonuje jeden obrót pętli; false oznacza anulowany kontekst.
func (w *RetryWorker) cycle(ctx context.Context) bool {
	rows, err := w.queue.DrainBatch(w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("Erro no worker de retry offline")
		return w.sleep(ctx, w.idleSleep)
	}
	if len(rows) == 0 {
		return w.sleep(ctx, w.idleSleep)
	}

	resolved := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return false
		}
		if err := w.flag(ctx, row.OrderID); err != nil {
			w.log.Warn().Err(err).
				Int64("order_id", row.OrderID).
				Int("attempts", row.Attempts+1).
				Msg("retry nieudany, wpis zostaje")
			if err := w.queue.MarkFailed(row.ID); err != nil {
				w.log.Error().Err(err).Uint("queue_id", row.ID).Msg("MarkFailed error")
			}
			continue
		}
		if err := w.queue.MarkResolved(row.ID); err != nil {
			w.log.Error().Err(err).Uint("queue_id", row.ID).Msg("MarkResolved error")
			continue
		}
		resolved++
		w.log.Info().Int64("order_id", row.OrderID).Msg("zaległe oflagowanie nadrobione")
	}
	if ctx.Err() != nil {
		return false
	}
	if resolved == 0 {
		// cała partia odbita: centralna baza najpewniej dalej leży,
		// odczekaj zamiast młócić kolejne obroty na pustym biegu
		return w.sleep(ctx, w.idleSleep)
	}
	return true
}

func (w *RetryWorker) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
