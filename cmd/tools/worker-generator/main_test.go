// cmd/tools/worker-generator/main_test.go
package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedRegistry = "../../../configs/activity-registry.json"

func TestRun_GeneratesParseableScaffold(t *testing.T) {
	out := t.TempDir()
	var buf bytes.Buffer

	require.NoError(t, run([]string{"-activity", "recommendation.rising.producers",
		"-output", out, "-registry", shippedRegistry}, &buf))

	dir := filepath.Join(out, "recommendation", "rising-producers")
	for _, name := range []string{"config.go", "models.go", "handler.go", "handler_test.go"} {
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		require.NoError(t, err, name)

		f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.AllErrors)
		require.NoError(t, err, "%s should be valid Go:\n%s", name, src)
		assert.Equal(t, "risingproducers", f.Name.Name)
	}

	handler, _ := os.ReadFile(filepath.Join(dir, "handler.go"))
	assert.Contains(t, string(handler), `TaskType = "rising-producers"`)
	assert.Contains(t, string(handler), `"printmatch-workers/internal/common/errors"`)
	assert.Contains(t, buf.String(), "Worker scaffold generated")
}

func TestRun_RefusesOverwrite(t *testing.T) {
	out := t.TempDir()
	args := []string{"-activity", "trending-product-types", "-output", out, "-registry", shippedRegistry}
	var buf bytes.Buffer

	require.NoError(t, run(args, &buf))
	assert.Error(t, run(args, &buf))
	assert.NoError(t, run(append(args, "-force"), &buf))
}

func TestRun_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run(nil, &buf))
	assert.Error(t, run([]string{"-activity", "nope", "-registry", shippedRegistry, "-output", t.TempDir()}, &buf))
	assert.Error(t, run([]string{"-activity", "x", "-registry", filepath.Join(t.TempDir(), "missing.json")}, &buf))
}

// ==========================
// Helpers
// ==========================

func TestSchemaFields(t *testing.T) {
	fields := schemaFields(map[string]interface{}{
		"properties": map[string]interface{}{
			"recipientId": map[string]interface{}{"type": "string", "description": "who to notify"},
			"limit":       map[string]interface{}{"type": "integer"},
			"urgent":      map[string]interface{}{"type": "boolean"},
		},
	})

	require.Len(t, fields, 3)
	assert.Equal(t, Field{GoName: "Limit", GoType: "int", JSONName: "limit"}, fields[0])
	assert.Equal(t, Field{GoName: "RecipientID", GoType: "string", JSONName: "recipientId", Comment: "who to notify"}, fields[1])
	assert.Equal(t, "bool", fields[2].GoType)
	assert.Empty(t, schemaFields(nil))
}

func TestDurationExpr(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{2 * time.Minute, "2 * time.Minute"},
		{45 * time.Second, "45 * time.Second"},
		{1500 * time.Millisecond, "1500 * time.Millisecond"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, durationExpr(tt.in))
	}
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "findproducermatches", packageName("find-producer-matches"))
	assert.Equal(t, "trendingproducttypes", packageName("trending_product.types"))
}
