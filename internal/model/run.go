package model

import "time"

type RunState string

const (
	RunStateIdle                      RunState = "IDLE"
	RunStateAuthenticating            RunState = "AUTHENTICATING"
	RunStateExtractingSchools         RunState = "EXTRACTING_SCHOOLS"
	RunStateMappingAndLoadingSchools  RunState = "MAPPING_AND_LOADING_SCHOOLS"
	RunStateExtractingStudents        RunState = "EXTRACTING_STUDENTS"
	RunStateMappingAndLoadingStudents RunState = "MAPPING_AND_LOADING_STUDENTS"
	RunStateDone                      RunState = "DONE"
	RunStateAborted                   RunState = "ABORTED"
	RunStateQueued                    RunState = "QUEUED"
)

func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateAborted
}

type RecordStatus string

const (
	RecordStatusSucceeded RecordStatus = "SUCCEEDED"
	RecordStatusFailed    RecordStatus = "FAILED"
)

type EntitySummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type RunSummary struct {
	RunID      string        `json:"run_id"`
	Source     string        `json:"source"`
	State      RunState      `json:"state"`
	Schools    EntitySummary `json:"schools"`
	Students   EntitySummary `json:"students"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

func (s *RunSummary) For(entity EntityType) *EntitySummary {
	if entity == EntityStudents {
		return &s.Students
	}
	return &s.Schools
}

// RecordOutcome is what the run ledger keeps per record: the natural key and
// the verdict, never the uploaded document.
type RecordOutcome struct {
	RunID        string       `json:"run_id" db:"run_id"`
	Entity       EntityType   `json:"entity" db:"entity"`
	Key          string       `json:"key" db:"natural_key"`
	Status       RecordStatus `json:"status" db:"status"`
	StatusCode   int          `json:"status_code,omitempty" db:"status_code"`
	ErrorMessage *string      `json:"error_message,omitempty" db:"error_message"`
}

type SyncJob struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

type SyncRequest struct {
	Source string `json:"source"`
}

type RunStatus struct {
	RunID     string        `json:"run_id"`
	State     RunState      `json:"state"`
	Source    string        `json:"source"`
	Schools   EntitySummary `json:"schools"`
	Students  EntitySummary `json:"students"`
	Errors    []string      `json:"errors,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
