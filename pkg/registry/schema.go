package registry

import "time"

// ActivityRegistry lists the task types this worker fleet serves. Process
// designers read it to wire service tasks; the worker manager reads it for
// input schemas, timeouts and retry budgets.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// Implementation statuses accepted by the registry-updater.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

var validStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusVerified:   true,
}

// TimeoutDuration parses Timeout, returning fallback when it is empty or
// malformed.
func (a Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	if a.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// HasInputSchema reports whether the activity declares any input constraint.
func (a Activity) HasInputSchema() bool {
	return len(a.InputSchema) > 0
}
