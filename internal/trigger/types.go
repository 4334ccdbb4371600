// internal/trigger/types.go
package trigger

import (
	"context"

	conf "github.com/bartek5186/www2pdv/internal/config"
	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/rs/zerolog"
)

// Engine – wąski widok orkiestratora dla źródeł wyzwoleń. Źródła nie
// dotykają żadnego współdzielonego stanu poza tymi dwoma wywołaniami.
type Engine interface {
	// TryStartSync odpala przebieg synchronizacji; no-op gdy inny trwa.
	TryStartSync()
	// ExportSingle eksportuje pojedynczy ładunek z pominięciem pobierania
	// kandydatów (ścieżka order_payload z kanału push).
	ExportSingle(p store.OrderPayload) error
}

// Source – długożyjące źródło wyzwoleń synchronizacji.
type Source interface {
	Name() string
	Start(ctx context.Context) error // blokuje do ctx.Done (long-running)
	Stop()                           // idempotent
}

type Factory func(log zerolog.Logger, eng Engine, cfg *conf.Config) (Source, error)
