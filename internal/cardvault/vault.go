// Package cardvault stores cards in a single JSON file next to the
// SQLite database. Cards never touch the SQL store.
//
// The file carries a versioned envelope: {"version":1,"cards":[...]}.
// Older installs wrote a bare card array; the loader migrates those on
// first read. Content that is neither shape, or fails schema
// validation, loads as an empty vault rather than an error, so a
// corrupted file never takes the card endpoints down.
package cardvault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"conti/internal/core"
)

const currentVersion = 1

const envelopeSchema = `{
  "type": "object",
  "required": ["version", "cards"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "cards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "number", "holder", "expiry"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "number": {"type": "string"},
          "holder": {"type": "string"},
          "expiry": {"type": "string"},
          "issuer": {"type": "string"},
          "balance": {"type": "string"},
          "limit": {"type": "string"},
          "frozen": {"type": "boolean"},
          "created_at": {"type": "string"}
        }
      }
    }
  }
}`

type envelope struct {
	Version int         `json:"version"`
	Cards   []core.Card `json:"cards"`
}

// Vault is the file-backed card store. All access goes through one
// mutex; the whole list is rewritten on every mutation, last write
// wins.
type Vault struct {
	mu     sync.Mutex
	path   string
	schema *gojsonschema.Schema
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile vault schema: %w", err)
	}
	return &Vault{path: path, schema: schema, logger: logger}, nil
}

// List returns all cards in the vault.
func (v *Vault) List() ([]core.Card, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.load()
}

// Update applies fn to the current card list and persists the result
// atomically. fn runs under the vault lock.
func (v *Vault) Update(fn func(cards []core.Card) ([]core.Card, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	cards, err := v.load()
	if err != nil {
		return err
	}
	cards, err = fn(cards)
	if err != nil {
		return err
	}
	return v.save(cards)
}

func (v *Vault) load() ([]core.Card, error) {
	data, err := os.ReadFile(v.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	// Legacy layout: a bare card array, no envelope.
	if trimmed[0] == '[' {
		var cards []core.Card
		if err := json.Unmarshal(trimmed, &cards); err != nil {
			v.logger.Warn("vault file is not a valid legacy card array, starting empty", "path", v.path, "error", err)
			return nil, nil
		}
		v.logger.Info("migrating legacy card vault", "path", v.path, "cards", len(cards))
		return cards, nil
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(trimmed))
	if err != nil || !result.Valid() {
		v.logger.Warn("vault file failed schema validation, starting empty", "path", v.path)
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		v.logger.Warn("vault file is malformed, starting empty", "path", v.path, "error", err)
		return nil, nil
	}
	if env.Version > currentVersion {
		v.logger.Warn("vault file written by a newer version, starting empty", "path", v.path, "version", env.Version)
		return nil, nil
	}
	return env.Cards, nil
}

func (v *Vault) save(cards []core.Card) error {
	if cards == nil {
		cards = []core.Card{}
	}
	data, err := json.MarshalIndent(envelope{Version: currentVersion, Cards: cards}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(v.path), 0o755); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write vault temp file: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace vault file: %w", err)
	}
	return nil
}
