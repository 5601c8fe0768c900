package domain

// RequirementTag marks a work item as belonging to one of the two reports.
type RequirementTag string

const (
	TagFunctional    RequirementTag = "PRD"
	TagNonFunctional RequirementTag = "NFR"
)

// RequirementTags is the canonical report order: functional first.
var RequirementTags = []RequirementTag{TagFunctional, TagNonFunctional}

// ValidRequirementTags is the canonical set of accepted tag strings.
var ValidRequirementTags = map[string]bool{
	string(TagFunctional):    true,
	string(TagNonFunctional): true,
}

// Title returns the report title for the tag.
func (t RequirementTag) Title() string {
	switch t {
	case TagFunctional:
		return "Functional Requirements"
	case TagNonFunctional:
		return "Non-Functional Requirements"
	default:
		return string(t) + " Requirements"
	}
}

// Priority is the MoSCoW classification carried in a custom field.
type Priority string

const (
	PriorityMust   Priority = "Must Have"
	PriorityShould Priority = "Should Have"
	PriorityCould  Priority = "Could Have"
	PriorityWont   Priority = "Won't Have"
)

// ValidPriorities lists the accepted MoSCoW values. Empty is also accepted.
var ValidPriorities = map[string]bool{
	string(PriorityMust): true, string(PriorityShould): true,
	string(PriorityCould): true, string(PriorityWont): true,
}

type ReleaseState string

const (
	ReleasePlanning ReleaseState = "Planning"
	ReleaseActive   ReleaseState = "Active"
	ReleaseAccepted ReleaseState = "Accepted"
)

// ValidReleaseStates is the canonical set of accepted release state strings.
var ValidReleaseStates = map[string]bool{
	"Planning": true, "Active": true, "Accepted": true,
}
