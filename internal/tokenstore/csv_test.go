package tokenstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCSVSaveAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.csv")
	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}

	if err := s.Save("42", "T1", "app-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("42", "T2", "app-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("99", "OTHER", "app-2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tokens, err := s.Lookup("42")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "T1" || tokens[1] != "T2" {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestCSVHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.csv")
	s, _ := OpenCSV(path)

	s.Save("1", "A", "app")
	s.Save("2", "B", "app")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if got := strings.Count(string(data), "ticket_id,token"); got != 1 {
		t.Errorf("header appears %d times:\n%s", got, data)
	}
}

func TestCSVLookupMissingFile(t *testing.T) {
	s, err := OpenCSV(filepath.Join(t.TempDir(), "never-written.csv"))
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}

	tokens, err := s.Lookup("42")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tokens != nil {
		t.Errorf("tokens = %v, want nil", tokens)
	}
}

func TestCSVRequiresPath(t *testing.T) {
	if _, err := OpenCSV(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
