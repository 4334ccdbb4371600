package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DailyPath zwraca ścieżkę dziennego pliku logu (logROK_M_D.txt) –
// ten sam format nazw czyta przeglądarka logów w powłoce.
func DailyPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("log%d_%d_%d.txt", now.Year(), int(now.Month()), now.Day()))
}

func New(logFilePath string, withConsole bool) zerolog.Logger {
	_ = os.MkdirAll(filepath.Dir(logFilePath), 0o755)

	// Utwórz plik logów (append + tworzenie jeśli brak)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal().Err(err).Msg("Nie można otworzyć pliku log")
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = logFile

	if withConsole {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writer = zerolog.MultiLevelWriter(logFile, consoleWriter)
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Caller().
		Logger()

	log.Logger = logger

	return logger
}
