// internal/syncer/pass.go
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bartek5186/www2pdv/internal/pdv"
	"github.com/bartek5186/www2pdv/internal/processed"
	"github.com/bartek5186/www2pdv/internal/store"
)

// TryStartSync odpala jeden przebieg eksportu w tle. Gdy inny przebieg
// trwa, wywołanie jest cichym no-opem – wyzwolenia się nie kolejkują,
// więc wołający nie może zakładać, że jego trigger faktycznie pobiegnie.
func (s *Syncer) TryStartSync() {
	if !s.passMu.TryLock() {
		return
	}
	if !s.passAdd() {
		s.passMu.Unlock()
		return
	}
	go func() {
		defer s.passWg.Done()
		s.runPass(s.runCtx())
	}()
}

// runPass – jeden przebieg: fetch → filtr dedup → eksport → oflagowanie.
// Wołający musi trzymać passMu; zwolnienie następuje w sprzątaniu.
func (s *Syncer) runPass(ctx context.Context) {
	start := time.Now()

	// sprzątanie gwarantowane: zwolnij bramkę, wyzeruj pasek postępu
	// i przelicz metryki niezależnie od tego, jak przebieg się skończył
	defer func() {
		s.setProgress(0)
		s.recomputeMetrics()
		s.passMu.Unlock()
	}()

	// 1. połączenie z bazą – awaria kończy przebieg, kolejny trigger spróbuje znowu
	if err := s.store.Ping(ctx); err != nil {
		s.log.Error().Err(err).Msg("Falha ao conectar DB")
		s.report("Erro de conexão ao banco", false)
		return
	}

	// 2. tryb konserwacji sprawdzany przed pobraniem zamówień
	restricted, err := s.store.CheckMaintenanceRestriction(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("maintenance check nieudany, kontynuuję")
	} else if restricted {
		s.report("Sistema em manutenção (pedidos restritos)", false)
		return
	}

	if err := s.store.EnsureExportedColumn(ctx); err != nil {
		s.log.Debug().Err(err).Msg("exported column: best-effort, pomijam błąd")
	}

	// 3. kandydaci wg statusów aktywnych
	orders, err := s.store.FetchActiveOrders(ctx, s.activeStatuses())
	if err != nil {
		s.log.Error().Err(err).Msg("Erro ao buscar pedidos")
		s.report("Erro ao buscar pedidos", false)
		return
	}

	// 4. podwójny dedup: flaga w bazie ORAZ lokalny processed-set –
	// mogą się różnić po częściowej awarii i oba muszą być sprawdzone
	s.mu.Lock()
	var newOrders []store.Order
	for _, o := range orders {
		if !o.Exported && !s.processed.Has(o.OrderID) {
			newOrders = append(newOrders, o)
		}
	}
	s.mu.Unlock()

	total := len(newOrders)
	if total == 0 {
		s.report("Tudo em ordem!\nTotal de 0 pedidos sincronizados", true)
		return
	}

	// 5. eksport pojedynczo; błąd jednego zamówienia nie przerywa batcha
	var processedLocal []int64
	for idx, o := range newOrders {
		if err := s.exportOrder(ctx, o); err != nil {
			s.log.Error().Err(err).Int64("order_id", o.OrderID).Msg("Erro ao processar pedido")
		} else {
			processedLocal = append(processedLocal, o.OrderID)
		}
		s.setProgress(float64(idx+1) / float64(total))
	}

	// 6. scal i utrwal processed-set; błąd zapisu tylko do logu
	s.mu.Lock()
	s.processed.Merge(processedLocal)
	saveErr := s.file.Save(s.processed)
	totalProcessed := len(s.processed)
	s.mu.Unlock()
	if saveErr != nil {
		s.log.Error().Err(saveErr).Msg("Falha ao salvar processed_orders.json")
	}

	s.stats.record(len(processedLocal), totalProcessed, time.Since(start))
	s.report(fmt.Sprintf("Sincronizado com sucesso\nTotal de %d pedidos", len(processedLocal)), true)
}

// exportOrder – krok 5 dla jednego zamówienia: pozycje, rekord, plik,
// oflagowanie. Zamówienie liczy się jako przetworzone, jeśli plik powstał
// – to on jest trwałym efektem, na którym opiera się dedup; los flagi
// załatwia kolejka offline.
func (s *Syncer) exportOrder(ctx context.Context, o store.Order) error {
	items, err := s.store.FetchItems(ctx, o.OrderID)
	if err != nil {
		return err
	}

	now := time.Now()
	seq := s.seq.Add(1) // numer zużyty nawet gdy zapis się nie uda; bez ponownego użycia
	line := pdv.Encode(o, items, seq, now)
	name := pdv.Filename(int(now.Month()), now.Day(), seq)

	path, err := pdv.WriteOrderFile(s.exportDir(), name, line)
	if err != nil {
		return err
	}

	s.flagOrQueue(ctx, store.OrderPayload{Order: o, Items: items})
	s.notify("Novo Pedido", fmt.Sprintf("Pedido %d processado.", o.OrderNumber))
	s.log.Info().Int64("order_number", o.OrderNumber).Str("file", path).Msg("pedido exportado")
	return nil
}

// flagOrQueue próbuje oflagować exported w centralnej bazie; porażka
// nie jest błędem eksportu – wpis ląduje w kolejce offline i wraca
// pętla retry.
func (s *Syncer) flagOrQueue(ctx context.Context, p store.OrderPayload) {
	if !s.markExportedEnabled() {
		return
	}
	err := s.store.FlagExported(ctx, p.OrderID)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Int64("order_id", p.OrderID).
		Msg("Não foi possível marcar exported no DB, wpis idzie do kolejki offline")

	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Error().Err(err).Int64("order_id", p.OrderID).Msg("payload marshal error")
		return
	}
	if err := s.queue.Enqueue(p.OrderID, raw); err != nil {
		s.log.Error().Err(err).Int64("order_id", p.OrderID).Msg("Falha ao enfileirar pedido offline")
	}
}

// ExportSingle eksportuje pojedynczy ładunek (ścieżka order_payload
// z kanału push), z pominięciem pobierania kandydatów.
func (s *Syncer) ExportSingle(p store.OrderPayload) error {
	ctx := s.runCtx()
	now := time.Now()
	seq := s.seq.Add(1)
	line := pdv.Encode(p.Order, p.Items, seq, now)
	name := pdv.Filename(int(now.Month()), now.Day(), seq)

	path, err := pdv.WriteOrderFile(s.exportDir(), name, line)
	if err != nil {
		return fmt.Errorf("write order file: %w", err)
	}

	s.flagOrQueue(ctx, p)
	s.notify("Novo Pedido", fmt.Sprintf("Pedido %d processado", p.OrderNumber))
	s.log.Info().Int64("order_id", p.OrderID).Str("file", path).Msg("payload processado")
	return nil
}

// ReprocessOrder eksportuje wskazane zamówienie ponownie, z pominięciem
// dedup (jawna akcja użytkownika z panelu historii). Fire-and-forget.
func (s *Syncer) ReprocessOrder(orderID int64) {
	if !s.passAdd() {
		return
	}
	go func() {
		defer s.passWg.Done()
		ctx := s.runCtx()

		o, err := s.store.FetchOrder(ctx, orderID)
		if err != nil {
			s.log.Error().Err(err).Int64("order_id", orderID).Msg("Falha ao reprocessar pedido")
			return
		}
		if o == nil {
			s.report(fmt.Sprintf("Pedido %d não encontrado", orderID), false)
			return
		}
		items, err := s.store.FetchItems(ctx, orderID)
		if err != nil {
			s.log.Error().Err(err).Int64("order_id", orderID).Msg("Falha ao reprocessar pedido")
			return
		}

		now := time.Now()
		seq := s.seq.Add(1)
		line := pdv.Encode(*o, items, seq, now)
		name := pdv.Filename(int(now.Month()), now.Day(), seq)
		path, err := pdv.WriteOrderFile(s.exportDir(), name, line)
		if err != nil {
			s.log.Error().Err(err).Int64("order_id", orderID).Msg("Falha ao reprocessar pedido")
			return
		}

		// reprocess flaguje best-effort, bez kolejki – użytkownik widzi wynik
		if s.markExportedEnabled() {
			if err := s.store.FlagExported(ctx, orderID); err != nil {
				s.log.Warn().Err(err).Int64("order_id", orderID).Msg("Não foi possível marcar exported no DB")
			}
		}
		s.report(fmt.Sprintf("Pedido %d reprocessado -> %s", orderID, path), true)
	}()
}

// ClearProcessed czyści lokalny zbiór dedup i utrwala pusty stan.
func (s *Syncer) ClearProcessed() {
	s.mu.Lock()
	s.processed = processed.Set{}
	err := s.file.Clear()
	s.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("Falha ao limpar processed_orders.json")
	}
	s.stats.setTotal(0)
	s.log.Info().Msg("Arquivo processed_orders limpo")
	s.recomputeMetrics()
}

// ExportProcessedCSV zrzuca processed-set do pliku CSV.
func (s *Syncer) ExportProcessedCSV(dst string) error {
	s.mu.Lock()
	set := make(processed.Set, len(s.processed))
	for id := range s.processed {
		set.Add(id)
	}
	s.mu.Unlock()
	return s.file.ExportCSV(dst, set)
}
