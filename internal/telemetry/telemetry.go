// Package telemetry records ingestion events as a JSONL stream. Every loaded
// inventory, append, failure and save is written as one JSON object per
// line, tagged with the session of the CLI run that produced it.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindSessionStart      = "session_start"
	KindSessionDone       = "session_done"
	KindInventoryLoaded   = "inventory_loaded"
	KindInventoryAppended = "inventory_appended"
	KindAppendFailed      = "append_failed"
	KindParquetSaved      = "parquet_saved"
	KindStoreSaved        = "store_saved"
	KindFileDetected      = "file_detected"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Session   string    `json:"session,omitempty"`
	Path      string    `json:"path,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	session string
	file    *os.File
	enc     *json.Encoder
	mu      sync.Mutex
}

// NewEmitter opens the JSONL file at path for appending, creating it if
// needed, and starts a new session.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		session: uuid.NewString(),
		file:    f,
		enc:     json.NewEncoder(f),
	}, nil
}

// Session returns the session id stamped on emitted events.
func (e *Emitter) Session() string {
	if e == nil {
		return ""
	}
	return e.session
}

// Emit writes a single event. A zero Timestamp is set to now and an empty
// Session to the emitter session.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Session == "" {
		evt.Session = e.session
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record emits an event of the given kind about path.
func (e *Emitter) Record(kind, path string, data any) error {
	return e.Emit(Event{Kind: kind, Path: path, Data: data})
}

// Close closes the underlying file. Calling Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// Decode reads events from a JSONL stream, calling fn for each one. Blank
// lines are skipped.
func Decode(r io.Reader, fn func(Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return fmt.Errorf("telemetry: line %d: %w", line, err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("telemetry: read: %w", err)
	}
	return nil
}
