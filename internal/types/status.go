package types

// PlanStage identifies a stage of the planning pipeline. Stages are
// strictly linear; the orchestrator never moves backward.
type PlanStage string

const (
	StageLoadingSpec       PlanStage = "loading_spec"
	StageMacroPlanning     PlanStage = "macro_planning"
	StagePOISelection      PlanStage = "poi_selection"
	StageRouteOptimization PlanStage = "route_optimization"
	StageCritiquing        PlanStage = "critiquing"
	StagePersisting        PlanStage = "persisting"
	StageDone              PlanStage = "done"
)

// RunStatus represents the terminal outcome of a planning run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)
