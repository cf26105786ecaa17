package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"askhr/internal/domain"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "hr_knowledge.json"), zerolog.Nop())
}

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{Text: "Employees get 12 casual leaves per year.", Source: "policy.txt", ChunkID: 0},
		{Text: "Notice period is 30 days <after> confirmation — ü.", Source: "policy.txt", ChunkID: 1},
		{Text: "WFH twice a week.", Source: "wfh.pdf", ChunkID: 0},
	}
}

func TestCodec_SaveLoadRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	if err := c.Save(sampleChunks()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := New(c.Path(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleChunks()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sampleChunks())
	}
}

func TestCodec_RecordLayout(t *testing.T) {
	c := newTestCodec(t)
	if err := c.Save(sampleChunks()[:2]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"documents": [`, `"chunk_id": 1`, `"source": "policy.txt"`, "<after>", "ü"} {
		if !strings.Contains(s, want) {
			t.Fatalf("record missing %q:\n%s", want, s)
		}
	}
}

func TestCodec_SaveEmptyRemovesRecord(t *testing.T) {
	c := newTestCodec(t)
	if err := c.Save(sampleChunks()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := c.Save(nil); err != nil {
		t.Fatalf("Save(nil) failed: %v", err)
	}
	if _, err := os.Stat(c.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected record to be removed, stat err = %v", err)
	}
	if err := c.Save(nil); err != nil {
		t.Fatalf("second Save(nil) failed: %v", err)
	}
}

func TestCodec_LoadMissing(t *testing.T) {
	got, err := newTestCodec(t).Load()
	if err != nil || got != nil {
		t.Fatalf("expected absent record, got %v, %v", got, err)
	}
}

func TestCodec_CorruptedRecordIsDiscarded(t *testing.T) {
	cases := map[string]string{
		"garbage":       "\x00\x01not json at all",
		"truncated":     `{"documents": [{"text": "a"`,
		"wrong shape":   `{"documents": "nope"}`,
		"missing key":   `{"chunks": []}`,
		"bad chunk":     `{"documents": [{"text": "", "source": "a", "chunk_id": 0}]}`,
		"negative id":   `{"documents": [{"text": "x", "source": "a", "chunk_id": -1}]}`,
		"array at root": `[]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestCodec(t)
			if err := os.MkdirAll(filepath.Dir(c.Path()), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(c.Path(), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := c.Load()
			if err != nil || got != nil {
				t.Fatalf("expected absent record, got %v, %v", got, err)
			}
			if _, err := os.Stat(c.Path()); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("expected corrupted record to be removed, stat err = %v", err)
			}
		})
	}
}

func TestDecode_EmptyDocuments(t *testing.T) {
	got, err := decode([]byte(`{"documents": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no chunks, got %d", len(got))
	}
	if _, err := decode([]byte(`{`)); !errors.Is(err, domain.ErrCorruptedRecord) {
		t.Fatalf("expected ErrCorruptedRecord, got %v", err)
	}
}
