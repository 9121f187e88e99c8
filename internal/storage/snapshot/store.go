package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monotributo-backend/internal/storage"
)

const (
	categoriesFile = "categorias.json"
	paymentsFile   = "pagos.json"
	surchargeFile  = "aref.json"

	sourceLabel = "AFIP - Scraping Web"
)

// envelope wraps snapshot payloads with refresh metadata. Files written
// before the envelope existed hold the bare payload; Load still accepts
// them.
type envelope struct {
	UpdatedAt string          `json:"fecha_actualizacion"`
	Source    string          `json:"fuente"`
	Data      json.RawMessage `json:"datos"`
}

// Store reads and writes the JSON snapshot files used as fallback when
// the live source is unreachable.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes both tables with a fresh metadata envelope.
func (s *Store) Save(categories storage.CategoryTable, payments storage.PaymentTable) error {
	const op = "storage.snapshot.Save"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().Format(time.RFC3339)
	if err := s.writeFile(categoriesFile, now, categories); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeFile(paymentsFile, now, payments); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) writeFile(name, updatedAt string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := envelope{UpdatedAt: updatedAt, Source: sourceLabel, Data: data}
	out, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), out, 0o644)
}

// Load reads both snapshot files. The returned time is the envelope
// timestamp of the categories file, or zero for legacy files.
func (s *Store) Load() (storage.CategoryTable, storage.PaymentTable, time.Time, error) {
	const op = "storage.snapshot.Load"

	var categories storage.CategoryTable
	updatedAt, err := s.readFile(categoriesFile, &categories)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	var payments storage.PaymentTable
	if _, err := s.readFile(paymentsFile, &payments); err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return categories, payments, updatedAt, nil
}

func (s *Store) readFile(name string, payload any) (time.Time, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return time.Time{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", name, err)
		}
		updatedAt, _ := time.Parse(time.RFC3339, env.UpdatedAt)
		return updatedAt, nil
	}

	// Legacy format: the file is the payload itself.
	if err := json.Unmarshal(raw, payload); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return time.Time{}, nil
}

// LoadSurcharge reads the provincial AREF amounts. A missing file is not
// an error: the surcharge is optional and simply absent in most
// provinces.
func (s *Store) LoadSurcharge() (storage.Surcharge, error) {
	const op = "storage.snapshot.LoadSurcharge"

	raw, err := os.ReadFile(filepath.Join(s.dir, surchargeFile))
	if errors.Is(err, os.ErrNotExist) {
		return storage.Surcharge{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sur storage.Surcharge
	if err := json.Unmarshal(raw, &sur); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sur, nil
}

// FileInfo describes one snapshot file for the status endpoint.
type FileInfo struct {
	Name     string     `json:"archivo"`
	Exists   bool       `json:"existe"`
	Size     int64      `json:"tamano,omitempty"`
	Modified *time.Time `json:"modificado,omitempty"`
}

// Files reports the state of every snapshot file.
func (s *Store) Files() []FileInfo {
	names := []string{categoriesFile, paymentsFile, surchargeFile}
	infos := make([]FileInfo, 0, len(names))
	for _, name := range names {
		fi := FileInfo{Name: name}
		if stat, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			mod := stat.ModTime()
			fi.Exists = true
			fi.Size = stat.Size()
			fi.Modified = &mod
		}
		infos = append(infos, fi)
	}
	return infos
}
