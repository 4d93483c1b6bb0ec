package model

type EntityType string

const (
	EntitySchools  EntityType = "schools"
	EntityStudents EntityType = "students"
)

// EntityOrder is the load order Ed-Fi reference validation requires.
var EntityOrder = []EntityType{EntitySchools, EntityStudents}

// EdFiResource is a schema-free document shaped for one Ed-Fi resource type.
// It is consumed once by the loader and not retained.
type EdFiResource map[string]any

type UploadResult struct {
	Resource   EntityType
	Key        string
	StatusCode int
	Body       string
	Err        error
}

func (r UploadResult) OK() bool {
	return r.Err == nil
}

// EdFiRootInfo is the document served at the Ed-Fi API root.
type EdFiRootInfo struct {
	Version    string          `json:"version"`
	Build      string          `json:"build,omitempty"`
	DataModels []EdFiDataModel `json:"dataModels"`
}

type EdFiDataModel struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ProbeReport struct {
	Root        EdFiRootInfo `json:"root"`
	TokenIssued bool         `json:"token_issued"`
	SchoolCount int          `json:"school_count"`
}
