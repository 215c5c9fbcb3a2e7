// Package storage persists the canonical scheduling workspace on the
// filesystem under an .atelier directory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"
)

const AtelierDir = ".atelier"
const ItemsFile = "items.json"
const RosterFile = "roster.yaml"
const ConfigFile = "config.yaml"
const EventsFile = "events.jsonl"
const PayrollDBFile = "payroll.db"

// WorkspaceConfig is the studio workspace configuration.
type WorkspaceConfig struct {
	StudioName string `yaml:"studio_name"`
	Currency   string `yaml:"currency"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// FilesystemRepository implements the canonical item store and the crew
// roster over plain files. Reads are retried with backoff so a concurrent
// writer mid-save does not surface as a hard failure.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .atelier directory and prevents
// traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, AtelierDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, AtelierDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .atelier directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, AtelierDir))
	return err == nil
}

// SaveItems writes the full canonical item store.
func (r *FilesystemRepository) SaveItems(items []scheduling.ScheduledItem) error {
	path, err := r.ResolvePath(ItemsFile)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Task != nil {
			if err := item.Task.Validate(); err != nil {
				return fmt.Errorf("refusing to persist inconsistent task: %w", err)
			}
		}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadItems reads the canonical item store. A missing file is an empty store.
func (r *FilesystemRepository) LoadItems() ([]scheduling.ScheduledItem, error) {
	retryer := retry.New[[]scheduling.ScheduledItem](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]scheduling.ScheduledItem, error) {
		path, err := r.ResolvePath(ItemsFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return []scheduling.ScheduledItem{}, nil
			}
			return nil, fmt.Errorf("failed to read items file: %w", err)
		}

		var items []scheduling.ScheduledItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}

		return items, nil
	})
}

// LoadItem returns the canonical item by id, or nil when absent.
func (r *FilesystemRepository) LoadItem(id string) (*scheduling.ScheduledItem, error) {
	items, err := r.LoadItems()
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == id {
			item := items[i].Clone()
			return &item, nil
		}
	}
	return nil, nil
}

// SaveItem replaces a single item in the canonical store by id.
func (r *FilesystemRepository) SaveItem(item scheduling.ScheduledItem) error {
	items, err := r.LoadItems()
	if err != nil {
		return err
	}

	replaced := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	return r.SaveItems(items)
}

// LoadRoster reads the crew roster. A missing file is an empty roster.
func (r *FilesystemRepository) LoadRoster() ([]crew.Member, error) {
	retryer := retry.New[[]crew.Member](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]crew.Member, error) {
		path, err := r.ResolvePath(RosterFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return []crew.Member{}, nil
			}
			return nil, fmt.Errorf("failed to read roster file: %w", err)
		}

		var members []crew.Member
		if err := yaml.Unmarshal(data, &members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roster: %w", err)
		}

		return members, nil
	})
}

// SaveRoster writes the crew roster.
func (r *FilesystemRepository) SaveRoster(members []crew.Member) error {
	path, err := r.ResolvePath(RosterFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Members implements crew.Roster.
func (r *FilesystemRepository) Members(ctx context.Context) ([]crew.Member, error) {
	return r.LoadRoster()
}

// Member implements crew.Roster. Returns nil when the id is unknown.
func (r *FilesystemRepository) Member(ctx context.Context, id string) (*crew.Member, error) {
	members, err := r.LoadRoster()
	if err != nil {
		return nil, err
	}

	for i := range members {
		if members[i].ID == id {
			m := members[i]
			return &m, nil
		}
	}
	return nil, nil
}

// LoadConfig reads the workspace config, falling back to defaults when the
// file is absent.
func (r *FilesystemRepository) LoadConfig() (*WorkspaceConfig, error) {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := &WorkspaceConfig{Currency: "USD", ListenAddr: ":8473"}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the workspace config.
func (r *FilesystemRepository) SaveConfig(cfg *WorkspaceConfig) error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

var _ scheduling.ItemRepository = (*FilesystemRepository)(nil)
var _ crew.Roster = (*FilesystemRepository)(nil)
