package importer

func ptr[T any](v T) *T { return &v }

// validSchema returns a small export with a two-level project tree, two
// releases and a parent story with two leaves.
func validSchema() *ExportSchema {
	return &ExportSchema{
		Workspace: "Acme",
		Projects: []ProjectExport{
			{ObjectID: 2, Name: "Checkout", Parent: ptr[int64](1)},
			{ObjectID: 1, Name: "Online Store"},
		},
		Releases: []ReleaseExport{
			{ObjectID: 50, Project: 1, Name: "2024.1", State: "Active",
				StartDate: ptr("2024-01-01"), EndDate: ptr("2024-03-31"), PlannedVelocity: ptr(40.0)},
			{ObjectID: 51, Project: 1, Name: "2024.2"},
		},
		Stories: []StoryExport{
			{ObjectID: 10, FormattedID: "US10", Project: 1, Name: "Checkout flow",
				Tags: []string{"PRD"}, DirectChildrenCount: 2, Priority: "Must Have"},
			{ObjectID: 11, FormattedID: "US11", Project: 2, Name: "Card payment",
				Parent: ptr[int64](10), Release: ptr("2024.1"), TestPlan: "TP-1"},
			{ObjectID: 12, FormattedID: "US12", Project: 2, Name: "Wallet payment",
				Parent: ptr[int64](10), Release: ptr("2024.2")},
		},
	}
}
