package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:                   "matching.score.calculate",
				DisplayName:          "Calculate Match Score",
				Category:             "matching",
				TaskType:             "calculate-match-score",
				ImplementationStatus: StatusCompleted,
				Timeout:              "5s",
				Retries:              3,
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"project"},
				},
			},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	require.NoError(t, Save(sampleRegistry(), path))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 1)

	a, ok := reg.FindByTaskType("calculate-match-score")
	require.True(t, ok)
	assert.Equal(t, "matching.score.calculate", a.ID)
	assert.True(t, a.HasInputSchema())
	assert.Equal(t, 5*time.Second, a.TimeoutDuration(time.Second))
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
}

func TestAdd(t *testing.T) {
	reg := sampleRegistry()

	err := reg.Add(Activity{ID: "matching.score.calculate", TaskType: "other"})
	assert.ErrorContains(t, err, "already exists")

	err = reg.Add(Activity{ID: "new.activity.id", TaskType: "calculate-match-score"})
	assert.ErrorContains(t, err, "already registered")

	require.NoError(t, reg.Add(Activity{ID: "matching.producers.find", TaskType: "find-producer-matches"}))
	assert.NotEmpty(t, reg.LastUpdated)
	_, ok := reg.FindByID("matching.producers.find")
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(r *ActivityRegistry) {}},
		{name: "empty", mutate: func(r *ActivityRegistry) { r.Activities = nil }, wantErr: "no activities"},
		{name: "missing task type", mutate: func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }, wantErr: "taskType"},
		{name: "bad status", mutate: func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" }, wantErr: "unknown status"},
		{name: "bad timeout", mutate: func(r *ActivityRegistry) { r.Activities[0].Timeout = "soon" }, wantErr: "invalid timeout"},
		{
			name: "duplicate task type",
			mutate: func(r *ActivityRegistry) {
				dup := r.Activities[0]
				dup.ID = "other.id.here"
				r.Activities = append(r.Activities, dup)
			},
			wantErr: "duplicate task type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTimeoutDuration_Fallback(t *testing.T) {
	assert.Equal(t, 3*time.Second, Activity{}.TimeoutDuration(3*time.Second))
	assert.Equal(t, 3*time.Second, Activity{Timeout: "-1s"}.TimeoutDuration(3*time.Second))
}
