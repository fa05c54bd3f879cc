package tokenstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var csvHeader = []string{"ticket_id", "token", "application_id", "created_at"}

// CSVStore keeps tracking tokens in an append-only CSV file. It trades
// queryability for a file agents can open directly; the SQLite backend is
// preferred for anything beyond a pilot.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// OpenCSV creates a CSVStore writing to the given path. The file and its
// parent directory are created on first save.
func OpenCSV(path string) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("csv token store: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating token file directory: %w", err)
		}
	}
	return &CSVStore{path: path}, nil
}

// Close is a no-op; the file is opened per operation.
func (s *CSVStore) Close() error {
	return nil
}

// Save appends one row, writing the header first when the file is new.
func (s *CSVStore) Save(ticketID, token, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inspecting token file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	row := []string{ticketID, token, applicationID, time.Now().UTC().Format(time.RFC3339)}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing token row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Lookup scans the whole file for rows matching the ticket id, oldest first.
// A missing file means no tokens have ever been saved.
func (s *CSVStore) Lookup(ticketID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var tokens []string
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading token file: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == csvHeader[0] {
				continue
			}
		}
		if len(record) >= 2 && record[0] == ticketID {
			tokens = append(tokens, record[1])
		}
	}
	return tokens, nil
}
