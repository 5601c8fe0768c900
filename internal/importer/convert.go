package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/repository"
)

// ReleaseRow is a release with the project it belongs to.
type ReleaseRow struct {
	ProjectID int64
	Release   domain.Release
}

// StoryRow is a work item with the project it belongs to.
type StoryRow struct {
	ProjectID int64
	Item      domain.WorkItem
}

// Workspace is a converted export, ready for persistence. Projects are
// ordered parents first.
type Workspace struct {
	Name     string
	Projects []repository.Project
	Releases []ReleaseRow
	Stories  []StoryRow
}

// Convert transforms a validated ExportSchema into domain objects ready for
// persistence. Call ValidateExportSchema first; Convert assumes the schema
// is valid.
func Convert(schema *ExportSchema) (*Workspace, error) {
	ws := &Workspace{Name: schema.Workspace}

	projects, err := orderProjects(schema.Projects)
	if err != nil {
		return nil, err
	}
	ws.Projects = projects

	for _, r := range schema.Releases {
		state := domain.ReleaseState(r.State)
		if state == "" {
			state = domain.ReleasePlanning
		}
		ws.Releases = append(ws.Releases, ReleaseRow{
			ProjectID: r.Project,
			Release: domain.Release{
				ID:              r.ObjectID,
				Name:            r.Name,
				Theme:           r.Theme,
				Version:         r.Version,
				State:           state,
				StartDate:       parseOptionalDate(r.StartDate),
				EndDate:         parseOptionalDate(r.EndDate),
				PlannedVelocity: r.PlannedVelocity,
			},
		})
	}

	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	for _, s := range schema.Stories {
		item := domain.WorkItem{
			ID:               s.ObjectID,
			FormattedID:      s.FormattedID,
			Name:             s.Name,
			Description:      s.Description,
			Project:          names[s.Project],
			Tags:             s.Tags,
			ParentID:         s.Parent,
			DirectChildCount: s.DirectChildrenCount,
			TestPlan:         s.TestPlan,
			Priority:         domain.Priority(s.Priority),
		}
		if s.Release != nil && *s.Release != "" && s.DirectChildrenCount == 0 {
			item.Release = &domain.ReleaseRef{Name: *s.Release}
		}
		ws.Stories = append(ws.Stories, StoryRow{ProjectID: s.Project, Item: item})
	}

	return ws, nil
}

// orderProjects returns projects with every parent before its children,
// preserving file order otherwise.
func orderProjects(in []ProjectExport) ([]repository.Project, error) {
	byID := make(map[int64]ProjectExport, len(in))
	for _, p := range in {
		byID[p.ObjectID] = p
	}

	placed := make(map[int64]bool, len(in))
	out := make([]repository.Project, 0, len(in))
	var place func(p ProjectExport, depth int) error
	place = func(p ProjectExport, depth int) error {
		if placed[p.ObjectID] {
			return nil
		}
		if depth > len(in) {
			return fmt.Errorf("ordering projects: cycle at project %d", p.ObjectID)
		}
		if p.Parent != nil {
			parent, ok := byID[*p.Parent]
			if !ok {
				return fmt.Errorf("ordering projects: parent %d of project %d not found", *p.Parent, p.ObjectID)
			}
			if err := place(parent, depth+1); err != nil {
				return err
			}
		}
		placed[p.ObjectID] = true
		out = append(out, repository.Project{ID: p.ObjectID, Name: p.Name, ParentID: p.Parent})
		return nil
	}

	for _, p := range in {
		if err := place(p, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseOptionalDate(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}
