package importer

import "time"

// IssueState enumerates the desired state of an imported issue.
type IssueState string

// Issue state enumerations.
const (
	IssueStateOpen   IssueState = IssueState("open")
	IssueStateClosed IssueState = IssueState("closed")
)

// IssueRequest is the normalized issue-creation request derived from one CSV row.
type IssueRequest struct {
	Title          string
	Body           string
	Labels         []string
	Assignees      []string
	MilestoneTitle string
	ProjectOwner   string
	ProjectNumber  int
	State          IssueState
	CloseReason    string
}

// HasProjectTarget reports whether both project coordinates are present.
func (request IssueRequest) HasProjectTarget() bool {
	return len(request.ProjectOwner) > 0 && request.ProjectNumber > 0
}

// RowStatus enumerates per-row import results.
type RowStatus string

// Row status enumerations.
const (
	RowStatusCreated   RowStatus = RowStatus("created")
	RowStatusPreviewed RowStatus = RowStatus("previewed")
	RowStatusFailed    RowStatus = RowStatus("failed")
)

// RowOutcome captures the result of processing a single CSV data row.
type RowOutcome struct {
	RowNumber    int
	Title        string
	Status       RowStatus
	IssueNumber  int
	IssueURL     string
	ErrorMessage string
}

// ImportSummary aggregates the outcomes of one import run.
type ImportSummary struct {
	Succeeded int
	Failed    int
	DryRun    bool
	Outcomes  []RowOutcome
}

// ImportOptions configures a single import run.
type ImportOptions struct {
	CSVPath          string
	Repository       string
	DryRun           bool
	Delay            time.Duration
	CreateLabels     bool
	CreateMilestones bool
}
