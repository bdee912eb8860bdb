package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the directory if needed.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// FindByTaskType returns the activity bound to a Zeebe job type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

func (r *ActivityRegistry) FindByID(id string) (int, bool) {
	for i, a := range r.Activities {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Add appends a new activity; IDs and task types must be unique.
func (r *ActivityRegistry) Add(a Activity) error {
	if _, exists := r.FindByID(a.ID); exists {
		return fmt.Errorf("activity with ID %s already exists", a.ID)
	}
	if _, exists := r.FindByTaskType(a.TaskType); exists {
		return fmt.Errorf("task type %s is already registered", a.TaskType)
	}
	r.Activities = append(r.Activities, a)
	r.touch()
	return nil
}

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Validate checks required fields, uniqueness, statuses and timeouts.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: displayName", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: category", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if a.ImplementationStatus != "" && !validStatuses[a.ImplementationStatus] {
			return fmt.Errorf("activity %s has unknown status %q", a.ID, a.ImplementationStatus)
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q: %w", a.ID, a.Timeout, err)
			}
		}
		if a.Retries < 0 {
			return fmt.Errorf("activity %s has negative retries", a.ID)
		}
	}
	return nil
}
