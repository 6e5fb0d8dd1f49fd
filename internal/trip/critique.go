package trip

// Severity grades a critique issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IssueScope names what part of the plan an issue refers to.
type IssueScope string

const (
	ScopeTrip  IssueScope = "trip"
	ScopeDay   IssueScope = "day"
	ScopeBlock IssueScope = "block"
)

// IssueKind is the machine-readable identifier of a critique rule outcome.
type IssueKind string

const (
	IssueTooFewMeals       IssueKind = "too_few_meals"
	IssueOutsideHours      IssueKind = "poi_outside_opening_hours"
	IssueTravelOverload    IssueKind = "travel_overload"
	IssueTooManyActivities IssueKind = "too_many_activities"
	IssueDayTruncated      IssueKind = "day_truncated"
)

// CritiqueIssue is one finding from the post-hoc critique pass. Issues are
// generated fresh each pass; previous issues for the trip are discarded,
// not accumulated.
type CritiqueIssue struct {
	Severity Severity   `json:"severity"`
	Scope    IssueScope `json:"scope"`
	Kind     IssueKind  `json:"kind"`
	Message  string     `json:"message"`

	// DayIndex is set for day- and block-scoped issues.
	DayIndex int `json:"day_index,omitempty"`
	// BlockIndex is set for block-scoped issues.
	BlockIndex int `json:"block_index,omitempty"`
}
