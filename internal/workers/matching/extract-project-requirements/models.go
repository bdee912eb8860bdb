// internal/workers/matching/extract-project-requirements/models.go
package extractprojectrequirements

import "printmatch-workers/internal/matching"

type Input struct {
	ProjectID  string               `json:"projectId,omitempty"`
	Files      []matching.FileInfo  `json:"files"`
	UserInputs *matching.UserInputs `json:"userInputs,omitempty"`
}

// Output carries the requirements alone and as a ready-to-score project.
type Output struct {
	Requirements matching.Requirements `json:"requirements"`
	Project      matching.Project      `json:"project"`
}
