package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExportSchema is the top-level JSON structure of a Rally workspace export.
// Every object is keyed by its Rally ObjectID.
type ExportSchema struct {
	Workspace  string          `json:"workspace"`
	ExportedAt string          `json:"exported_at,omitempty"`
	Projects   []ProjectExport `json:"projects"`
	Releases   []ReleaseExport `json:"releases"`
	Stories    []StoryExport   `json:"stories"`
}

type ProjectExport struct {
	ObjectID int64  `json:"object_id"`
	Name     string `json:"name"`
	Parent   *int64 `json:"parent,omitempty"`
}

type ReleaseExport struct {
	ObjectID        int64    `json:"object_id"`
	Project         int64    `json:"project"`
	Name            string   `json:"name"`
	Theme           string   `json:"theme,omitempty"`
	Version         string   `json:"version,omitempty"`
	State           string   `json:"state,omitempty"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	PlannedVelocity *float64 `json:"planned_velocity,omitempty"`
}

// StoryExport is one hierarchical requirement. Release is the release
// name and is only legal on items without children.
type StoryExport struct {
	ObjectID            int64    `json:"object_id"`
	FormattedID         string   `json:"formatted_id"`
	Project             int64    `json:"project"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	Parent              *int64   `json:"parent,omitempty"`
	DirectChildrenCount int      `json:"direct_children_count"`
	Release             *string  `json:"release,omitempty"`
	TestPlan            string   `json:"test_plan,omitempty"`
	Priority            string   `json:"priority,omitempty"`
}

// LoadExportSchema reads and parses a Rally export JSON file.
func LoadExportSchema(path string) (*ExportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ExportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing export file: %w", err)
	}
	return &schema, nil
}
