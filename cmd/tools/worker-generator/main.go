// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"printmatch-workers/pkg/registry"
)

const modulePath = "printmatch-workers"

// WorkerData holds data for templates
type WorkerData struct {
	Module      string
	Name        string
	PackageName string
	TaskType    string
	Category    string
	Description string
	Timeout     string
	ErrorCodes  []string
	InputProps  []Field
	OutputProps []Field
}

// Field is one top-level schema property rendered as a struct field.
type Field struct {
	GoName   string
	GoType   string
	JSONName string
	Comment  string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("worker-generator", flag.ContinueOnError)
	fs.SetOutput(out)
	activity := fs.String("activity", "", "Activity ID or task type from the registry (e.g., recommendation.rising.producers)")
	outputDir := fs.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := fs.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *activity == "" {
		fmt.Fprintln(out, "Usage: worker-generator -activity <id|taskType> [-output <dir>] [-registry <path>] [-force]")
		return fmt.Errorf("activity is required")
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		return fmt.Errorf("load registry %s: %w", *registryPath, err)
	}
	act, err := findActivity(reg, *activity)
	if err != nil {
		return err
	}

	data := newWorkerData(act)
	workerDir := filepath.Join(*outputDir, categoryDir(act.Category), act.TaskType)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	files := []struct{ name, tmpl string }{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}
	for _, f := range files {
		path := filepath.Join(workerDir, f.name)
		if !*force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, use -force to overwrite", path)
			}
		}
		if err := render(path, f.name, f.tmpl, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated %s\n", path)
	}

	fmt.Fprintf(out, "\nWorker scaffold generated at %s\n", workerDir)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Implement execute in handler.go")
	fmt.Fprintln(out, "  2. Register the handler in cmd/worker-manager/workers.go")
	fmt.Fprintf(out, "  3. Add a workers.%s section to configs/config.yaml\n", act.TaskType)
	return nil
}

func findActivity(reg *registry.ActivityRegistry, key string) (registry.Activity, error) {
	if i, ok := reg.FindByID(key); ok {
		return reg.Activities[i], nil
	}
	if a, ok := reg.FindByTaskType(key); ok {
		return a, nil
	}
	return registry.Activity{}, fmt.Errorf("activity %q not found in registry", key)
}

func newWorkerData(a registry.Activity) WorkerData {
	return WorkerData{
		Module:      modulePath,
		Name:        a.DisplayName,
		PackageName: packageName(a.TaskType),
		TaskType:    a.TaskType,
		Category:    a.Category,
		Description: a.Description,
		Timeout:     durationExpr(a.TimeoutDuration(30 * time.Second)),
		ErrorCodes:  a.ErrorCodes,
		InputProps:  schemaFields(a.InputSchema),
		OutputProps: schemaFields(a.OutputSchema),
	}
}

func render(path, name, tmplStr string, data WorkerData) error {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// schemaFields turns the top-level properties of a JSON schema into struct
// fields, sorted by JSON name so output is stable.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		desc, _ := details["description"].(string)
		fields = append(fields, Field{
			GoName:   exportedName(name),
			GoType:   goType(details["type"]),
			JSONName: name,
			Comment:  desc,
		})
	}
	return fields
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == '.' })
	for i, p := range parts {
		if p == "id" || p == "Id" {
			parts[i] = "ID"
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	name := strings.Join(parts, "")
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

// durationExpr renders d as Go source, e.g. "2 * time.Minute".
func durationExpr(d time.Duration) string {
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%d * time.Minute", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	default:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	}
}

func packageName(taskType string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "", ".", "").Replace(taskType))
}

func categoryDir(category string) string {
	if category == "" {
		return "misc"
	}
	return strings.ToLower(category)
}

const configTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputProps }}
	{{ .GoName }} {{ .GoType }} ` + "`json:\"{{ .JSONName }},omitempty\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .OutputProps }}
	{{ .GoName }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"

	"{{ .Module }}/internal/common/errors"
	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

{{ if .Description }}// Handler runs the {{ .TaskType }} job: {{ .Description }}
{{ end -}}
type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input is required")
	}
	return nil, errors.NewInternalError(fmt.Errorf("%s is not implemented", TaskType))
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.RecordJobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.RecordJobFailed(TaskType, string(code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"{{ .Module }}/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), nil)
	assert.Error(t, err)
}
`
