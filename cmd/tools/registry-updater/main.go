// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"printmatch-workers/internal/common/validation"
	"printmatch-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "add":
		return runAdd(args[1:], out)
	case "update":
		return runUpdate(args[1:], out)
	case "validate":
		return runValidate(args[1:], out)
	case "list":
		return runList(args[1:], out)
	case "help", "-h", "--help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID (e.g., matching.score.calculate)")
	displayName := fs.String("displayName", "", "Display Name (e.g., Calculate Match Score)")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "", "Category (matching, recommendation, notification)")
	taskType := fs.String("taskType", "", "Zeebe task type (e.g., calculate-match-score)")
	version := fs.String("version", "1.0.0", "Version")
	status := fs.String("status", registry.StatusPlanned, "Implementation status (planned, in-progress, completed, verified)")
	timeout := fs.String("timeout", "10s", "Job timeout")
	retries := fs.Int("retries", 3, "Retry count")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *displayName == "" || *category == "" || *taskType == "" {
		return fmt.Errorf("id, displayName, category and taskType are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              *timeout,
		Retries:              *retries,
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := registry.Save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, inputSchema, ...)")
	value := fs.String("value", "", "New value; for inputSchema, a path to a JSON schema file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *field == "" || *value == "" {
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	i, ok := reg.FindByID(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}
	if err := setField(&reg.Activities[i], *field, *value); err != nil {
		return err
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	if _, err := validation.NewSchemaValidator(reg); err != nil {
		return err
	}
	if err := registry.Save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated activity %s, field %s\n", *id, *field)
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	case "errorCodes":
		a.ErrorCodes = splitList(value)
	case "tags":
		a.Tags = splitList(value)
	case "workflows":
		a.Workflows = splitList(value)
	case "inputSchema", "outputSchema":
		data, err := os.ReadFile(value)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		var schema map[string]interface{}
		if err := json.Unmarshal(data, &schema); err != nil {
			return fmt.Errorf("parse schema %s: %w", value, err)
		}
		if field == "inputSchema" {
			a.InputSchema = schema
		} else {
			a.OutputSchema = schema
		}
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// runValidate checks the registry fields and compiles every input schema the
// worker manager will enforce.
func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	v, err := validation.NewSchemaValidator(reg)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d activities, %d with input schemas.\n",
		len(reg.Activities), len(v.TaskTypes()))
	return nil
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	category := fs.String("category", "", "Only list activities in this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activities := make([]registry.Activity, 0, len(reg.Activities))
	for _, a := range reg.Activities {
		if *category == "" || a.Category == *category {
			activities = append(activities, a)
		}
	}
	sort.SliceStable(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].TaskType < activities[j].TaskType
	})

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return tw.Flush()
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the registry
  update    Update an existing activity's field
  validate  Validate the registry file and its input schemas
  list      List registered activities
  help      Show this help message

Examples:
  registry-updater add -id matching.score.calculate -displayName "Calculate Match Score" -category matching -taskType calculate-match-score
  registry-updater update -id matching.score.calculate -field status -value verified
  registry-updater update -id matching.score.calculate -field inputSchema -value schemas/calculate-match-score.json
  registry-updater validate -path configs/activity-registry.json
  registry-updater list -category recommendation

Use 'registry-updater <command> -h' for more information about a command.`)
}
