package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"askhr/internal/chunker"
	"askhr/internal/domain"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("Leave policy ü"), "Leave policy ü"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Notice"...), "Notice"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'H', 0, 'R', 0}, "HR"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9, ' ', 0x93, 'x', 0x94}, "café “x”"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeText(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_BrokenPDFDegradesToEmpty(t *testing.T) {
	text, err := Extract(domain.Upload{Name: "broken.PDF", Data: []byte("%PDF-1.4 not really")}, zerolog.Nop())
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestBuildDocuments_PreservesOrder(t *testing.T) {
	ch, err := chunker.NewWindowChunker(30, 5)
	if err != nil {
		t.Fatal(err)
	}
	uploads := []domain.Upload{
		{Name: "leave.txt", Data: []byte("Employees get 12 casual leaves per year. Unused leaves lapse.")},
		{Name: "broken.pdf", Data: []byte("garbage")},
		{Name: "notice.txt", Data: []byte("Notice period is 30 days.")},
	}
	chunks, err := BuildDocuments(uploads, ch, zerolog.Nop())
	if err != nil {
		t.Fatalf("BuildDocuments failed: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if last.Source != "notice.txt" || last.ChunkID != 0 {
		t.Fatalf("unexpected last chunk %+v", last)
	}
	for i, c := range chunks[:len(chunks)-1] {
		if c.Source != "leave.txt" || c.ChunkID != i {
			t.Fatalf("chunk %d: unexpected %+v", i, c)
		}
	}
}

type badChunker struct{}

func (badChunker) Chunk(domain.Document) ([]domain.Chunk, error) {
	return nil, domain.ErrInvalidConfiguration
}

func TestBuildDocuments_ChunkerErrorAborts(t *testing.T) {
	_, err := BuildDocuments([]domain.Upload{{Name: "a.txt", Data: []byte("x")}}, badChunker{}, zerolog.Nop())
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestReadPaths(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.txt", "b")
	write("a.txt", "a")
	write("nested/c.md", "c")
	write("nested/skip.png", "png")
	write(".hidden/d.txt", "d")
	write("extra.csv", "csv")

	uploads, err := ReadPaths([]string{dir, filepath.Join(dir, "extra.csv")}, nil)
	if err != nil {
		t.Fatalf("ReadPaths failed: %v", err)
	}
	var names []string
	for _, u := range uploads {
		names = append(names, u.Name)
	}
	want := []string{"a.txt", "b.txt", "nested/c.md", "extra.csv"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}

	globbed, err := ReadPaths([]string{filepath.Join(dir, "*.txt")}, nil)
	if err != nil {
		t.Fatalf("ReadPaths with glob failed: %v", err)
	}
	if len(globbed) != 2 {
		t.Fatalf("expected 2 files from glob, got %d", len(globbed))
	}

	if _, err := ReadPaths([]string{filepath.Join(dir, "missing.txt")}, nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := ReadPaths([]string{filepath.Join(dir, "nested")}, []string{".pdf"}); err == nil || !strings.Contains(err.Error(), "no documents") {
		t.Fatalf("expected no documents error, got %v", err)
	}
}

func TestReadPaths_SameBaseNameStaysDistinct(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"india/policy.txt", "uk/policy.txt"} {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	walked, err := ReadPaths([]string{dir}, nil)
	if err != nil {
		t.Fatalf("ReadPaths failed: %v", err)
	}
	var names []string
	for _, u := range walked {
		names = append(names, u.Name)
	}
	if want := []string{"india/policy.txt", "uk/policy.txt"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}

	india := filepath.Join(dir, "india", "policy.txt")
	uk := filepath.Join(dir, "uk", "policy.txt")
	named, err := ReadPaths([]string{india, uk}, nil)
	if err != nil {
		t.Fatalf("ReadPaths failed: %v", err)
	}
	if len(named) != 2 || named[0].Name == named[1].Name {
		t.Fatalf("expected distinct names, got %q and %q", named[0].Name, named[1].Name)
	}
	if named[0].Name != filepath.ToSlash(india) || string(named[1].Data) != "uk/policy.txt" {
		t.Fatalf("unexpected uploads %q / %q", named[0].Name, named[1].Data)
	}

	single, err := ReadPaths([]string{india}, nil)
	if err != nil {
		t.Fatalf("ReadPaths failed: %v", err)
	}
	if single[0].Name != "policy.txt" {
		t.Fatalf("expected base name for a lone file, got %q", single[0].Name)
	}
}
