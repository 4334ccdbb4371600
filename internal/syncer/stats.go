// internal/syncer/stats.go
package syncer

import (
	"fmt"
	"sync"
	"time"
)

// Stats – liczniki synchronizacji. Licznik dzienny zeruje się wyłącznie
// restartem procesu (znane ograniczenie, bez kalendarzowego przełomu dnia).
type Stats struct {
	mu             sync.Mutex
	processedToday int
	totalProcessed int
	totalTime      time.Duration
}

type StatsSnapshot struct {
	ProcessedToday int
	TotalProcessed int
	TotalTime      time.Duration
}

func (st *Stats) record(batch, total int, elapsed time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.processedToday += batch
	st.totalProcessed = total
	st.totalTime += elapsed
}

func (st *Stats) setTotal(total int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.totalProcessed = total
}

func (st *Stats) Snapshot() StatsSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return StatsSnapshot{
		ProcessedToday: st.processedToday,
		TotalProcessed: st.totalProcessed,
		TotalTime:      st.totalTime,
	}
}

// Avg – średni czas przetworzenia jednego zamówienia.
func (s StatsSnapshot) Avg() time.Duration {
	if s.TotalProcessed == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.TotalProcessed)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("Hoje: %d pedidos | Total proces.: %d | Tempo médio: %.2fs",
		s.ProcessedToday, s.TotalProcessed, s.Avg().Seconds())
}
