// internal/pdv/file.go
package pdv

import (
	"os"
	"path/filepath"
)

// WriteOrderFile zapisuje rekord do katalogu integracji. Plik jest
// write-once: jedna linia zakończona \n, bez dopisywania.
func WriteOrderFile(dir, name, line string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
