package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidate_ValidSchema(t *testing.T) {
	errs := ValidateExportSchema(validSchema())
	assert.Empty(t, errs)
}

func TestValidate_ProjectErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ExportSchema)
		want   string
	}{
		{"no projects", func(s *ExportSchema) { s.Projects = nil; s.Releases = nil; s.Stories = nil }, "at least one project"},
		{"missing name", func(s *ExportSchema) { s.Projects[0].Name = "" }, "projects[0].name is required"},
		{"duplicate id", func(s *ExportSchema) { s.Projects[0].ObjectID = 1 }, "duplicate id 1"},
		{"duplicate name", func(s *ExportSchema) { s.Projects[0].Name = "Online Store" }, "duplicate name"},
		{"unknown parent", func(s *ExportSchema) { s.Projects[0].Parent = ptr[int64](99) }, "project 99 not found"},
		{"cycle", func(s *ExportSchema) { s.Projects[1].Parent = ptr[int64](2) }, "circular project hierarchy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchema()
			tt.mutate(s)
			errs := ValidateExportSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errStrings(errs)[0], tt.want)
		})
	}
}

func TestValidate_ReleaseErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ExportSchema)
		want   string
	}{
		{"unknown project", func(s *ExportSchema) { s.Releases[0].Project = 7 }, "releases[0].project: project 7 not found"},
		{"bad state", func(s *ExportSchema) { s.Releases[0].State = "Done" }, `invalid value "Done"`},
		{"bad date", func(s *ExportSchema) { s.Releases[0].StartDate = ptr("01/02/2024") }, "invalid date format"},
		{"end before start", func(s *ExportSchema) { s.Releases[0].EndDate = ptr("2023-12-01") }, "must not be before"},
		{"missing name", func(s *ExportSchema) { s.Releases[1].Name = "" }, "releases[1].name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchema()
			tt.mutate(s)
			errs := ValidateExportSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errStrings(errs)[0], tt.want)
		})
	}
}

func TestValidate_StoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ExportSchema)
		want   string
	}{
		{"missing formatted id", func(s *ExportSchema) { s.Stories[0].FormattedID = "" }, "stories[0].formatted_id is required"},
		{"negative child count", func(s *ExportSchema) { s.Stories[1].DirectChildrenCount = -1 }, "must not be negative"},
		{"release on parent", func(s *ExportSchema) { s.Stories[0].Release = ptr("2024.1") }, "item with children cannot carry a release"},
		{"unknown release", func(s *ExportSchema) { s.Stories[1].Release = ptr("2099.9") }, `release "2099.9" not found`},
		{"bad priority", func(s *ExportSchema) { s.Stories[0].Priority = "Maybe" }, `invalid value "Maybe"`},
		{"self parent", func(s *ExportSchema) { s.Stories[0].Parent = ptr[int64](10) }, "is its own parent"},
		{"more children than declared", func(s *ExportSchema) { s.Stories[0].DirectChildrenCount = 1 }, "2 children reference item 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchema()
			tt.mutate(s)
			errs := ValidateExportSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errStrings(errs)[0], tt.want)
		})
	}
}

func TestValidate_StoryCycle(t *testing.T) {
	s := validSchema()
	s.Stories[0].Parent = ptr[int64](11)
	s.Stories[1].DirectChildrenCount = 1
	s.Stories[1].Release = nil

	errs := ValidateExportSchema(s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "circular story hierarchy")
}

func TestValidate_ParentOutsideExportAllowed(t *testing.T) {
	s := validSchema()
	s.Stories[0].Parent = ptr[int64](9999)

	assert.Empty(t, ValidateExportSchema(s))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	s := validSchema()
	s.Projects[0].Name = ""
	s.Releases[0].State = "Done"
	s.Stories[2].Name = ""

	assert.Len(t, ValidateExportSchema(s), 3)
}

func TestIncompleteHierarchies(t *testing.T) {
	s := validSchema()
	assert.Empty(t, IncompleteHierarchies(s))

	s.Stories[0].DirectChildrenCount = 3
	assert.Equal(t, []string{"US10 declares 3 children, export contains 2"}, IncompleteHierarchies(s))
}

func TestLoadExportSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	data := `{
		"workspace": "Acme",
		"projects": [{"object_id": 1, "name": "Online Store"}],
		"releases": [{"object_id": 5, "project": 1, "name": "2024.1", "state": "Active", "planned_velocity": 12.5}],
		"stories": [{"object_id": 10, "formatted_id": "US10", "project": 1, "name": "Login",
			"tags": ["PRD"], "parent": null, "direct_children_count": 0, "release": "2024.1"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadExportSchema(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", s.Workspace)
	require.Len(t, s.Stories, 1)
	assert.Nil(t, s.Stories[0].Parent)
	assert.Equal(t, "2024.1", *s.Stories[0].Release)
	assert.InDelta(t, 12.5, *s.Releases[0].PlannedVelocity, 1e-9)
	assert.Empty(t, ValidateExportSchema(s))
}

func TestLoadExportSchema_Errors(t *testing.T) {
	_, err := LoadExportSchema(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadExportSchema(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing export file")
}
