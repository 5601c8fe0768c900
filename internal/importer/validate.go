package importer

import (
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/reqreport/internal/domain"
)

const dateLayout = "2006-01-02"

// ValidateExportSchema checks the export for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateExportSchema(schema *ExportSchema) []error {
	var errs []error

	projectIDs := make(map[int64]bool)
	errs = append(errs, validateProjects(schema.Projects, projectIDs)...)

	releaseNames := make(map[string]bool)
	errs = append(errs, validateReleases(schema.Releases, projectIDs, releaseNames)...)

	errs = append(errs, validateStories(schema.Stories, projectIDs, releaseNames)...)

	return errs
}

func validateProjects(projects []ProjectExport, ids map[int64]bool) []error {
	var errs []error
	names := make(map[string]bool)

	if len(projects) == 0 {
		errs = append(errs, fmt.Errorf("projects: at least one project is required"))
	}

	for i, p := range projects {
		prefix := fmt.Sprintf("projects[%d]", i)

		if p.ObjectID <= 0 {
			errs = append(errs, fmt.Errorf("%s.object_id must be positive", prefix))
		} else if ids[p.ObjectID] {
			errs = append(errs, fmt.Errorf("%s.object_id: duplicate id %d", prefix, p.ObjectID))
		} else {
			ids[p.ObjectID] = true
		}

		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if names[p.Name] {
			errs = append(errs, fmt.Errorf("%s.name: duplicate name %q", prefix, p.Name))
		} else {
			names[p.Name] = true
		}
	}

	// Parents may appear in any order, so check them after every id is known.
	parents := make(map[int64]int64)
	for i, p := range projects {
		if p.Parent == nil {
			continue
		}
		if !ids[*p.Parent] {
			errs = append(errs, fmt.Errorf("projects[%d].parent: project %d not found", i, *p.Parent))
			continue
		}
		parents[p.ObjectID] = *p.Parent
	}
	errs = append(errs, detectCycles("project", parents)...)

	return errs
}

func validateReleases(releases []ReleaseExport, projectIDs map[int64]bool, names map[string]bool) []error {
	var errs []error
	ids := make(map[int64]bool)

	for i, r := range releases {
		prefix := fmt.Sprintf("releases[%d]", i)

		if r.ObjectID <= 0 {
			errs = append(errs, fmt.Errorf("%s.object_id must be positive", prefix))
		} else if ids[r.ObjectID] {
			errs = append(errs, fmt.Errorf("%s.object_id: duplicate id %d", prefix, r.ObjectID))
		} else {
			ids[r.ObjectID] = true
		}

		if !projectIDs[r.Project] {
			errs = append(errs, fmt.Errorf("%s.project: project %d not found", prefix, r.Project))
		}
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			names[r.Name] = true
		}
		if r.State != "" && !domain.ValidReleaseStates[r.State] {
			errs = append(errs, fmt.Errorf("%s.state: invalid value %q", prefix, r.State))
		}

		errs = append(errs, validateOptionalDate(prefix+".start_date", r.StartDate)...)
		errs = append(errs, validateOptionalDate(prefix+".end_date", r.EndDate)...)
		if start, end := parseOptionalDate(r.StartDate), parseOptionalDate(r.EndDate); !start.IsZero() && !end.IsZero() && end.Before(start) {
			errs = append(errs, fmt.Errorf("%s: end_date %q must not be before start_date %q", prefix, *r.EndDate, *r.StartDate))
		}
	}

	return errs
}

func validateStories(stories []StoryExport, projectIDs map[int64]bool, releaseNames map[string]bool) []error {
	var errs []error
	ids := make(map[int64]bool)

	for i, s := range stories {
		prefix := fmt.Sprintf("stories[%d]", i)

		if s.ObjectID <= 0 {
			errs = append(errs, fmt.Errorf("%s.object_id must be positive", prefix))
		} else if ids[s.ObjectID] {
			errs = append(errs, fmt.Errorf("%s.object_id: duplicate id %d", prefix, s.ObjectID))
		} else {
			ids[s.ObjectID] = true
		}

		if s.FormattedID == "" {
			errs = append(errs, fmt.Errorf("%s.formatted_id is required", prefix))
		}
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if !projectIDs[s.Project] {
			errs = append(errs, fmt.Errorf("%s.project: project %d not found", prefix, s.Project))
		}
		if s.DirectChildrenCount < 0 {
			errs = append(errs, fmt.Errorf("%s.direct_children_count must not be negative", prefix))
		}
		if s.Release != nil && *s.Release != "" {
			if s.DirectChildrenCount > 0 {
				errs = append(errs, fmt.Errorf("%s.release: item with children cannot carry a release", prefix))
			} else if !releaseNames[*s.Release] {
				errs = append(errs, fmt.Errorf("%s.release: release %q not found in releases", prefix, *s.Release))
			}
		}
		if s.Priority != "" && !domain.ValidPriorities[s.Priority] {
			errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", prefix, s.Priority))
		}
		if s.Parent != nil && *s.Parent == s.ObjectID {
			errs = append(errs, fmt.Errorf("%s.parent: item %d is its own parent", prefix, s.ObjectID))
		}
	}

	// Parents outside the export are allowed; only cycles among exported
	// stories are rejected.
	parents := make(map[int64]int64)
	children := make(map[int64]int)
	for _, s := range stories {
		if s.Parent == nil || *s.Parent == s.ObjectID || !ids[*s.Parent] {
			continue
		}
		parents[s.ObjectID] = *s.Parent
		children[*s.Parent]++
	}
	errs = append(errs, detectCycles("story", parents)...)

	for i, s := range stories {
		if n := children[s.ObjectID]; n > s.DirectChildrenCount {
			errs = append(errs, fmt.Errorf("stories[%d]: %d children reference item %d but direct_children_count is %d",
				i, n, s.ObjectID, s.DirectChildrenCount))
		}
	}

	return errs
}

// detectCycles walks child -> parent links and reports each cycle once.
func detectCycles(kind string, parents map[int64]int64) []error {
	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[int64]int)
	var errs []error

	var visit func(id int64)
	visit = func(id int64) {
		color[id] = gray
		if next, ok := parents[id]; ok {
			switch color[next] {
			case gray:
				errs = append(errs, fmt.Errorf("circular %s hierarchy detected involving %d and %d", kind, id, next))
			case white:
				visit(next)
			}
		}
		color[id] = black
	}

	// Deterministic order keeps error output stable.
	ids := make([]int64, 0, len(parents))
	for id := range parents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if color[id] == white {
			visit(id)
		}
	}

	return errs
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, *dateStr); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *dateStr)}
	}
	return nil
}

// IncompleteHierarchies lists items whose declared child count exceeds the
// children present in the export. Reports over such items may be partial.
func IncompleteHierarchies(schema *ExportSchema) []string {
	children := make(map[int64]int)
	for _, s := range schema.Stories {
		if s.Parent != nil {
			children[*s.Parent]++
		}
	}
	var out []string
	for _, s := range schema.Stories {
		if n := children[s.ObjectID]; s.DirectChildrenCount > n {
			out = append(out, fmt.Sprintf("%s declares %d children, export contains %d", s.FormattedID, s.DirectChildrenCount, n))
		}
	}
	return out
}
