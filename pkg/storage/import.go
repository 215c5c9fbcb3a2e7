package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
	"github.com/xeipuuv/gojsonschema"
)

// itemsSchema validates an imported item file before anything is decoded
// into the domain model.
const itemsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string", "minLength": 1},
      "quantity": {"type": "integer", "minimum": 0},
      "unit_cost": {"type": "number", "minimum": 0},
      "profit_type": {"enum": ["service", "product"]},
      "crew_member_id": {"type": "string"},
      "crew": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "type": {"type": "string"}
        }
      },
      "task": {
        "type": "object",
        "required": ["id", "start_date", "end_date", "duration_days", "status"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "start_date": {"type": "string"},
          "end_date": {"type": "string"},
          "duration_days": {"type": "integer", "minimum": 1, "maximum": 365},
          "completed_at": {"type": ["string", "null"]},
          "status": {"enum": ["pending", "completed"]},
          "progress_percent": {"type": "integer", "minimum": 0, "maximum": 100}
        }
      }
    }
  }
}`

// ImportItems validates and loads items from an external JSON file into the
// canonical store, replacing existing items with matching ids.
func (r *FilesystemRepository) ImportItems(path string) ([]scheduling.ScheduledItem, error) {
	// #nosec G304 -- user-supplied import path is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(itemsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("import file is not valid: %s", strings.Join(msgs, "; "))
	}

	var imported []scheduling.ScheduledItem
	if err := json.Unmarshal(data, &imported); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import file: %w", err)
	}

	for _, item := range imported {
		if item.Task != nil {
			if err := item.Task.Validate(); err != nil {
				return nil, fmt.Errorf("imported item %s: %w", item.ID, err)
			}
		}
	}

	existing, err := r.LoadItems()
	if err != nil {
		return nil, err
	}

	merged := make([]scheduling.ScheduledItem, 0, len(existing)+len(imported))
	importedByID := make(map[string]bool, len(imported))
	for _, item := range imported {
		importedByID[item.ID] = true
	}
	for _, item := range existing {
		if !importedByID[item.ID] {
			merged = append(merged, item)
		}
	}
	merged = append(merged, imported...)

	if err := r.SaveItems(merged); err != nil {
		return nil, err
	}

	return imported, nil
}
