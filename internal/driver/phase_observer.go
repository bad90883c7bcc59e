package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during LowerModule.
type PhaseObserver func(PhaseEvent)

// Stage is the step a function is in.
type Stage uint8

const (
	StageNone Stage = iota
	StageLower
	StageSimplify
	StageValidate
)

func (s Stage) String() string {
	switch s {
	case StageLower:
		return "lowering"
	case StageSimplify:
		return "simplifying"
	case StageValidate:
		return "validating"
	default:
		return ""
	}
}

type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// ProgressEvent reports one function changing state. Func is empty for
// module-wide stage changes.
type ProgressEvent struct {
	Func   string
	Stage  Stage
	Status Status
}

// ProgressFunc is called from worker goroutines and must be safe for
// concurrent use.
type ProgressFunc func(ProgressEvent)
