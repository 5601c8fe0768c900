package report

// Stable column names. They match the Rally field names the original grids
// used so exported rows stay recognisable.
const (
	ColFormattedID = "FormattedID"
	ColName        = "Name"
	ColDescription = "Description"
	ColPriority    = "MoSCoW"
	ColTestPlan    = "TestPlan"
)

// Column describes one table column. DisplayWidth is in terminal cells;
// zero means the column takes the remaining width.
type Column struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	DisplayWidth int    `json:"displayWidth"`
	WrapText     bool   `json:"wrapText"`
}

// Options are the user-configurable presentation choices. Changing them
// never requires a new fetch.
type Options struct {
	IncludeTestPlanColumn bool
}

// Columns returns the column set for opts.
func Columns(opts Options) []Column {
	cols := []Column{
		{Name: ColFormattedID, Title: "ID", DisplayWidth: 10},
		{Name: ColName, Title: "Name", DisplayWidth: 32, WrapText: true},
		{Name: ColDescription, Title: "Description", WrapText: true},
		{Name: ColPriority, Title: "MoSCoW", DisplayWidth: 12},
	}
	if opts.IncludeTestPlanColumn {
		cols = append(cols, Column{Name: ColTestPlan, Title: "Test Plan", WrapText: true})
	}
	return cols
}
