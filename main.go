//go:build windows && !dev

package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/getlantern/systray"

	conf "github.com/bartek5186/www2pdv/internal/config"
	logs "github.com/bartek5186/www2pdv/internal/logs"
	"github.com/bartek5186/www2pdv/internal/processed"
	"github.com/bartek5186/www2pdv/internal/queue"
	"github.com/bartek5186/www2pdv/internal/store"
	syncer "github.com/bartek5186/www2pdv/internal/syncer"
)

//go:embed assets/icon.ico
var iconData []byte

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	// katalog danych aplikacji (logi, config, kolejka offline)
	appDir := mustAppDataDir("www2pdv")
	logsDir := filepath.Join(appDir, "logs")
	log := logs.New(logs.DailyPath(logsDir, time.Now()), false)

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

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB open error")
	}

	// kontekst sterujący życiem procesu (CTRL+C / zamknięcie sesji)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := syncer.New(log, cfg, st, q,
		processed.NewFile(filepath.Join(appDir, "processed_orders.json")))

	retry := queue.NewRetryWorker(log, q, st.FlagExported)
	go retry.Run(ctx)

	// jeśli proces dostanie sygnał – zatrzymaj syncer i zamknij tray
	go func() {
		<-ctx.Done()
		s.Stop()
		systray.Quit()
	}()

	systray.Run(func() {
		// onReady
		if len(iconData) > 0 {
			systray.SetIcon(iconData)
		}
		systray.SetTooltip(fmt.Sprintf("WWW2PDV Sync %s", ver))

		// status z przebiegów ląduje w tooltipie
		s.OnStatus = func(st syncer.Status) {
			systray.SetTooltip(fmt.Sprintf("WWW2PDV Sync %s – %s", ver, st.Message))
		}

		mSyncNow := systray.AddMenuItem("Sincronizar agora", "Odpal jeden przebieg")
		mStart := systray.AddMenuItem("Start auto sync", "Uruchom harmonogram")
		mStop := systray.AddMenuItem("Stop auto sync", "Zatrzymaj harmonogram")
		mStop.Disable()

		systray.AddSeparator()
		mMetrics := systray.AddMenuItem("Métricas", "Pokaż liczniki w logu")
		mClear := systray.AddMenuItem("Limpar processed", "Wyczyść lokalny dedup")
		mExportCSV := systray.AddMenuItem("Exportar processed CSV", "Zrzuć dedup do CSV")

		// panel historii: ostatnie zamówienia z bazy, klik = reeksport
		mHistory := systray.AddMenuItem("Reprocessar pedido", "Ostatnie zamówienia z centralnej bazy")
		mHistRefresh := mHistory.AddSubMenuItem("Atualizar lista", "Pobierz ostatnie zamówienia")
		const historySlots = 5
		var histMu sync.Mutex
		slots := make([]*systray.MenuItem, historySlots)
		slotIDs := make([]int64, historySlots)
		for i := range slots {
			slots[i] = mHistory.AddSubMenuItem("–", "Reprocessa este pedido")
			slots[i].Hide()
		}
		// kliki slotów obsługiwane osobno, select w pętli menu ma stałą
		// listę kanałów
		for i := range slots {
			go func(i int) {
				for range slots[i].ClickedCh {
					histMu.Lock()
					id := slotIDs[i]
					histMu.Unlock()
					if id != 0 {
						s.ReprocessOrder(id)
					}
				}
			}(i)
		}

		systray.AddSeparator()
		mOpenLogs := systray.AddMenuItem("Otwórz logi", "Pokaż katalog logów")
		mOpenCfg := systray.AddMenuItem("Ustawienia (config.json)", "Otwórz plik konfiguracyjny")
		mReload := systray.AddMenuItem("Przeładuj konfigurację", "Wczytaj ponownie config.json")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Sair", "Zamknij aplikację")

		// AutoStart harmonogramu wg configa
		if cfg.AutoSync || cfg.PushFeedURL != "" {
			if err := s.Start(ctx); err == nil {
				mStart.Disable()
				mStop.Enable()
				systray.SetTooltip(fmt.Sprintf("WWW2PDV Sync %s – działa", ver))
			} else {
				log.Error().Err(err).Msg("AutoStart nieudany")
			}
		}

		go func() {
			for {
				select {
				case <-mSyncNow.ClickedCh:
					s.TryStartSync()

				case <-mStart.ClickedCh:
					if err := s.Start(ctx); err != nil {
						log.Error().Err(err).Msg("Start error")
						continue
					}
					mStart.Disable()
					mStop.Enable()
					systray.SetTooltip(fmt.Sprintf("WWW2PDV Sync %s – działa", ver))

				case <-mStop.ClickedCh:
					s.Stop()
					mStop.Disable()
					mStart.Enable()
					systray.SetTooltip(fmt.Sprintf("WWW2PDV Sync %s – zatrzymane", ver))

				case <-mMetrics.ClickedCh:
					log.Info().Msg(s.Stats().String())

				case <-mClear.ClickedCh:
					s.ClearProcessed()

				case <-mExportCSV.ClickedCh:
					dst := filepath.Join(appDir, "processed_export.csv")
					if err := s.ExportProcessedCSV(dst); err != nil {
						log.Error().Err(err).Msg("Erro ao exportar CSV")
						continue
					}
					log.Info().Str("file", dst).Msg("Exportado processed")

				case <-mHistRefresh.ClickedCh:
					rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
					recent, err := st.FetchRecent(rctx, historySlots)
					rcancel()
					if err != nil {
						log.Error().Err(err).Msg("Erro ao buscar pedidos recentes")
						continue
					}
					histMu.Lock()
					for i := range slots {
						if i < len(recent) {
							r := recent[i]
							slotIDs[i] = r.ID
							title := fmt.Sprintf("#%d – %s", r.OrderNumber, r.Status)
							if r.Total != nil {
								title = fmt.Sprintf("#%d – %s (R$ %.2f)", r.OrderNumber, r.Status, *r.Total)
							}
							slots[i].SetTitle(title)
							slots[i].Show()
						} else {
							slotIDs[i] = 0
							slots[i].Hide()
						}
					}
					histMu.Unlock()

				case <-mOpenLogs.ClickedCh:
					openInExplorer(logsDir)

				case <-mOpenCfg.ClickedCh:
					openInExplorer(cfgPath)

				case <-mReload.ClickedCh:
					newCfg, _, err := conf.LoadOrCreate(cfgPath)
					if err != nil {
						log.Error().Err(err).Msg("Błąd reloadu")
						continue
					}
					cfg = newCfg
					s.UpdateConfig(cfg)
					log.Info().Msg("Konfiguracja przeładowana")

				case <-mQuit.ClickedCh:
					// łagodne zamykanie
					cancel()
					s.Stop()
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		// onExit – daj chwilę loggerowi na flush (jeśli potrzebuje)
		time.Sleep(50 * time.Millisecond)
		_ = st.Close()
		_ = q.Close()
	})
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

// przenośne otwieranie plików/katalogów w domyślnej aplikacji
func openInExplorer(path string) {
	switch runtime.GOOS {
	case "windows":
		// "start" musi być uruchomiony przez cmd /C, z pustym tytułem okna ""
		_ = exec.Command("cmd", "/C", "start", "", path).Start()
	case "darwin":
		_ = exec.Command("open", path).Start()
	default:
		_ = exec.Command("xdg-open", path).Start()
	}
}
