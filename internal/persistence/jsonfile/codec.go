package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"askhr/internal/domain"
)

// DefaultPath is where the knowledge base record lives unless configured.
const DefaultPath = "data/hr_knowledge.json"

const recordSchema = `{
  "type": "object",
  "required": ["documents"],
  "properties": {
    "documents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text", "source", "chunk_id"],
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "source": {"type": "string"},
          "chunk_id": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var schema = gojsonschema.NewStringLoader(recordSchema)

type record struct {
	Documents []domain.Chunk `json:"documents"`
}

// Codec keeps the chunk sequence in a single JSON file.
type Codec struct {
	path string
	log  zerolog.Logger
}

// New returns a codec for the record at path.
func New(path string, logger zerolog.Logger) *Codec {
	if path == "" {
		path = DefaultPath
	}
	return &Codec{path: path, log: logger.With().Str("record", path).Logger()}
}

// Path returns the record location.
func (c *Codec) Path() string { return c.path }

// Save overwrites the record with chunks. An empty sequence removes it.
func (c *Codec) Save(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return c.remove()
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record{Documents: chunks}); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace record: %w", err)
	}
	c.log.Debug().Int("chunks", len(chunks)).Msg("knowledge base saved")
	return nil
}

// Load returns the stored chunks, or nil when there is no record. A record
// that does not decode is deleted and treated as absent.
func (c *Codec) Load() ([]domain.Chunk, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	chunks, err := decode(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("discarding corrupted knowledge base record")
		if rmErr := c.remove(); rmErr != nil {
			c.log.Error().Err(rmErr).Msg("failed to remove corrupted record")
		}
		return nil, nil
	}
	c.log.Debug().Int("chunks", len(chunks)).Msg("knowledge base loaded")
	return chunks, nil
}

func (c *Codec) remove() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

func decode(data []byte) ([]domain.Chunk, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedRecord, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrCorruptedRecord, strings.Join(msgs, "; "))
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedRecord, err)
	}
	return rec.Documents, nil
}
