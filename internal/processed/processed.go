// internal/processed/processed.go
package processed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Set – identyfikatory zamówień, dla których ten proces wypisał już plik.
// Niezależne od flagi exported w centralnej bazie: oba źródła dedup mogą
// się rozjechać po częściowej awarii i filtr kandydatów pyta o oba.
type Set map[int64]struct{}

func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id int64) { s[id] = struct{}{} }

func (s Set) Merge(ids []int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s Set) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// File – trwały magazyn zbioru, format {"processed":[...]}.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: path} }

type payload struct {
	Processed []int64 `json:"processed"`
}

// Load nigdy nie zwraca błędu: brak pliku albo uszkodzona zawartość
// oznacza pusty zbiór, nie przerwanie startu.
func (f *File) Load() Set {
	set := Set{}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return set
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return set
	}
	set.Merge(p.Processed)
	return set
}

// Save zapisuje cały zbiór. Błąd zapisu jest zwracany do zalogowania,
// ale wołający nie może z jego powodu przerywać batcha.
func (f *File) Save(set Set) error {
	_ = os.MkdirAll(filepath.Dir(f.path), 0o755)
	data, err := json.Marshal(payload{Processed: set.Sorted()})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// Clear czyści zbiór i od razu utrwala pusty stan (akcja użytkownika).
func (f *File) Clear() error {
	return f.Save(Set{})
}

// ExportCSV zrzuca zbiór do pliku CSV (kolumna order_id, rosnąco).
func (f *File) ExportCSV(dst string, set Set) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.WriteString("order_id\n"); err != nil {
		return err
	}
	for _, id := range set.Sorted() {
		if _, err := fmt.Fprintf(out, "%d\n", id); err != nil {
			return err
		}
	}
	return nil
}
