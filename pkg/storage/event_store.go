package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/events"
	"github.com/google/uuid"
)

// FileEventStore appends domain events to a JSON Lines file. It registers
// on the dispatcher as a wildcard handler so every emitted event lands in
// the log.
type FileEventStore struct {
	mu       sync.Mutex
	path     string
	basePath string
}

// NewFileEventStore creates a file-backed event store rooted at the
// .atelier directory. The directory is created on first write, not at
// construction time, so it does not interfere with initialization checks.
func NewFileEventStore(root string) *FileEventStore {
	basePath := filepath.Join(root, AtelierDir)
	return &FileEventStore{
		path:     filepath.Join(basePath, EventsFile),
		basePath: basePath,
	}
}

// StoredEvent is the persisted envelope: the common fields plus the full
// event payload.
type StoredEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// Append adds a new event to the store.
func (s *FileEventStore) Append(event events.DomainEvent) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	stored := StoredEvent{
		ID:          uuid.New().String(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Payload:     payload,
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	if err := os.MkdirAll(s.basePath, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	line, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	return nil
}

// Load reads all stored events in append order.
func (s *FileEventStore) Load() ([]StoredEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path is derived from the workspace root
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []StoredEvent{}, nil
		}
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var out []StoredEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev StoredEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("decode event line: %w", err)
		}
		out = append(out, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}

	return out, nil
}

// Handler adapts the store to an events.HandlerFunc for wildcard registration.
func (s *FileEventStore) Handler() events.HandlerFunc {
	return func(ctx context.Context, event events.DomainEvent) error {
		return s.Append(event)
	}
}
