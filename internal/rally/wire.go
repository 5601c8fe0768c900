package rally

import (
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alexanderramin/reqreport/internal/domain"
)

// queryResponse is the envelope of every WSAPI collection query.
type queryResponse struct {
	QueryResult struct {
		Errors           []string          `json:"Errors"`
		Warnings         []string          `json:"Warnings"`
		TotalResultCount int               `json:"TotalResultCount"`
		StartIndex       int               `json:"StartIndex"`
		PageSize         int               `json:"PageSize"`
		Results          []json.RawMessage `json:"Results"`
	} `json:"QueryResult"`
}

// objectRef is an embedded reference to another WSAPI object.
type objectRef struct {
	Ref           string `json:"_ref"`
	RefObjectName string `json:"_refObjectName"`
	ObjectID      int64  `json:"ObjectID"`
	Name          string `json:"Name"`
}

// id returns the referenced ObjectID, falling back to the last _ref
// segment when ObjectID was not fetched.
func (r *objectRef) id() (int64, error) {
	if r.ObjectID > 0 {
		return r.ObjectID, nil
	}
	n, err := strconv.ParseInt(path.Base(r.Ref), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unresolvable ref %q", r.Ref)
	}
	return n, nil
}

func (r *objectRef) name() string {
	return domain.CoalesceStr(r.Name, r.RefObjectName)
}

type tagSummary struct {
	Count    int `json:"Count"`
	NameList []struct {
		Name string `json:"Name"`
	} `json:"_tagsNameArray"`
}

// storyRecord is a hierarchicalrequirement as returned by WSAPI.
type storyRecord struct {
	ObjectID            int64       `json:"ObjectID" validate:"gt=0"`
	FormattedID         string      `json:"FormattedID" validate:"required"`
	Name                string      `json:"Name" validate:"required"`
	Description         string      `json:"Description"`
	DirectChildrenCount *int        `json:"DirectChildrenCount" validate:"required,gte=0"`
	Parent              *objectRef  `json:"Parent"`
	Release             *objectRef  `json:"Release"`
	Project             *objectRef  `json:"Project"`
	Tags                *tagSummary `json:"Tags"`
}

// releaseRecord is a release as returned by WSAPI.
type releaseRecord struct {
	ObjectID         int64    `json:"ObjectID" validate:"gt=0"`
	Name             string   `json:"Name" validate:"required"`
	Theme            string   `json:"Theme"`
	Version          string   `json:"Version"`
	State            string   `json:"State" validate:"omitempty,oneof=Planning Active Accepted"`
	ReleaseStartDate string   `json:"ReleaseStartDate"`
	ReleaseDate      string   `json:"ReleaseDate"`
	PlannedVelocity  *float64 `json:"PlannedVelocity"`
}

// decoder turns raw result records into validated domain values.
type decoder struct {
	validate      *validator.Validate
	priorityField string
	testPlanField string
}

func newDecoder(cfg Config) *decoder {
	return &decoder{
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		priorityField: cfg.PriorityField,
		testPlanField: cfg.TestPlanField,
	}
}

func (d *decoder) workItem(raw json.RawMessage) (domain.WorkItem, error) {
	var rec storyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.WorkItem{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := d.validate.Struct(rec); err != nil {
		return domain.WorkItem{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, recordLabel(rec.FormattedID, rec.ObjectID), err)
	}

	// Custom fields are only known at runtime.
	var custom map[string]json.RawMessage
	if err := json.Unmarshal(raw, &custom); err != nil {
		return domain.WorkItem{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	item := domain.WorkItem{
		ID:               rec.ObjectID,
		FormattedID:      rec.FormattedID,
		Name:             rec.Name,
		Description:      rec.Description,
		DirectChildCount: *rec.DirectChildrenCount,
		Priority:         domain.Priority(customString(custom[d.priorityField])),
		TestPlan:         customString(custom[d.testPlanField]),
	}
	if rec.Parent != nil {
		id, err := rec.Parent.id()
		if err != nil {
			return domain.WorkItem{}, fmt.Errorf("%w: %s parent: %v", ErrInvalidRecord, rec.FormattedID, err)
		}
		item.ParentID = domain.Int64Ptr(id)
	}
	// A parent's Release is ignored even if the backend left one behind.
	if rec.Release != nil && item.DirectChildCount == 0 {
		item.Release = &domain.ReleaseRef{Name: rec.Release.name()}
	}
	if rec.Project != nil {
		item.Project = rec.Project.name()
	}
	if rec.Tags != nil {
		for _, t := range rec.Tags.NameList {
			item.Tags = append(item.Tags, t.Name)
		}
		slices.Sort(item.Tags)
	}
	return item, nil
}

func (d *decoder) release(raw json.RawMessage) (domain.Release, error) {
	var rec releaseRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Release{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := d.validate.Struct(rec); err != nil {
		return domain.Release{}, fmt.Errorf("%w: release %q: %v", ErrInvalidRecord, rec.Name, err)
	}
	start, err := parseTimestamp(rec.ReleaseStartDate)
	if err != nil {
		return domain.Release{}, fmt.Errorf("%w: release %q start: %v", ErrInvalidRecord, rec.Name, err)
	}
	end, err := parseTimestamp(rec.ReleaseDate)
	if err != nil {
		return domain.Release{}, fmt.Errorf("%w: release %q end: %v", ErrInvalidRecord, rec.Name, err)
	}
	return domain.Release{
		ID:              rec.ObjectID,
		Name:            rec.Name,
		Theme:           rec.Theme,
		Version:         rec.Version,
		State:           domain.ReleaseState(rec.State),
		StartDate:       start,
		EndDate:         end,
		PlannedVelocity: rec.PlannedVelocity,
	}, nil
}

// customString reads a custom field that may be a string, null, or a
// dropdown object with a StringValue.
func customString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		StringValue string `json:"StringValue"`
		Name        string `json:"Name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return domain.CoalesceStr(obj.StringValue, obj.Name)
	}
	return ""
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func recordLabel(formattedID string, objectID int64) string {
	if formattedID != "" {
		return formattedID
	}
	return "ObjectID " + strconv.FormatInt(objectID, 10)
}
