package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/esgraph/internal/cli/config"
	"github.com/conduit-lang/esgraph/internal/graph"
)

const orderSchema = `
document "shop.Order" {
  index = "orders"

  property "id" { type = "keyword" }
  property "items" {
    type   = "nested"
    target = list(shop.OrderItem)
  }
  property "description" {
    type   = "text"
    fields = { raw = "keyword" }
  }
}

class "shop.OrderItem" {
  property "sku" { type = "keyword" }
}
`

const badProperty = `
class "shop.Audit" {
  property "kind" { type = "enum" }
}

document "shop.Event" {
  property "audit" {
    type   = "object"
    target = shop.Audit
  }
}
`

func init() {
	color.NoColor = true
}

// safeBuffer is written by watcher goroutines while tests read it
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// project writes an hcl project with the given schema files and returns
// its directory.
func project(t *testing.T, outputFile string, schemas map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0o755))
	for name, src := range schemas {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", name), []byte(src), 0o644))
	}

	cfg := config.Default()
	cfg.Source.Format = config.FormatHCL
	cfg.Source.Dir = "schema"
	cfg.Output.File = outputFile
	require.NoError(t, config.Write(filepath.Join(dir, config.FileName), cfg))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "esgraph", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "build", "inspect", "watch", "init", "completion"} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "esgraph version: 1.0.0-test")
	assert.Contains(t, stdout, "Git commit: abc123")
	assert.Contains(t, stdout, "Go version: ")
}

func TestBuildSummary(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema})

	stdout, _, err := run(t, "build", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Documents:   1")
	assert.Contains(t, stdout, "Objects:     1")
	assert.Contains(t, stdout, "Fields:      4")
	assert.Contains(t, stdout, "0 error(s), 0 warning(s), 0 note(s)")
	assert.Contains(t, stdout, "✓ Built graph in")
}

func TestBuildWritesOutput(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema})
	out := filepath.Join(t.TempDir(), "graph.json")

	stdout, _, err := run(t, "build", "-C", dir, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Output:")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc graph.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "QOrder", doc.Nodes[0].GeneratedName)
	assert.Equal(t, "orders", doc.Nodes[0].IndexName)
}

func TestBuildJSON(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema, "audit.hcl": badProperty})

	stdout, _, err := run(t, "build", "-C", dir, "--json")
	require.NoError(t, err)

	var report buildReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.Success)
	assert.NotEmpty(t, report.BuildID)
	require.NotNil(t, report.Graph)
	assert.Len(t, report.Graph.Nodes, 4)
	assert.Equal(t, "error", report.Diagnostics.Status)
	require.Len(t, report.Diagnostics.Errors, 1)
	assert.Equal(t, "E100", report.Diagnostics.Errors[0].Code)
}

func TestBuildStrict(t *testing.T) {
	dir := project(t, "", map[string]string{"audit.hcl": badProperty})

	_, stderr, err := run(t, "build", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Error[E100]")

	_, _, err = run(t, "build", "-C", dir, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")

	stdout, _, err := run(t, "build", "-C", dir, "--strict", "--json")
	require.Error(t, err)
	var report buildReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Success)
}

func TestBuildLoadFailure(t *testing.T) {
	dir := project(t, "", nil)

	_, stderr, err := run(t, "build", "-C", dir)
	require.Error(t, err)
	assert.True(t, isReported(err))
	assert.Contains(t, stderr, "LOAD FAILED")
	assert.Contains(t, stderr, "no .hcl schema files found")

	stdout, _, err := run(t, "build", "-C", dir, "--json")
	require.Error(t, err)
	var report buildReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Success)
	assert.Nil(t, report.Graph)
	require.Len(t, report.Diagnostics.Errors, 1)
	assert.Equal(t, "E300", report.Diagnostics.Errors[0].Code)
}

func TestBuildInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("source:\n  format: xml\n"), 0o644))

	_, stderr, err := run(t, "build", "-C", dir)
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
}

func TestInspect(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema})

	stdout, _, err := run(t, "inspect", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "QOrder (shop.Order) index=orders")
	lines := strings.Split(stdout, "\n")

	var rows []string
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			rows = append(rows, fields[0])
		}
	}
	assert.Contains(t, rows, "items.sku")
	assert.Contains(t, rows, "description.raw")
	assert.NotContains(t, stdout, "QOrderItem (")

	for _, line := range lines {
		if strings.HasPrefix(line, "items.sku") {
			assert.Contains(t, line, "yes")
			assert.True(t, strings.HasSuffix(line, "items"))
		}
	}
}

func TestInspectOneClass(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema})

	stdout, _, err := run(t, "inspect", "-C", dir, "QOrderItem")
	require.NoError(t, err)
	assert.Contains(t, stdout, "QOrderItem (shop.OrderItem)")
	assert.Contains(t, stdout, "sku")
	assert.NotContains(t, stdout, "index=")

	stdout, _, err = run(t, "inspect", "-C", dir, "--objects")
	require.NoError(t, err)
	assert.Contains(t, stdout, "QOrder (shop.Order)")
	assert.Contains(t, stdout, "QOrderItem (shop.OrderItem)")
}

func TestInspectUnknownClass(t *testing.T) {
	dir := project(t, "", map[string]string{"shop.hcl": orderSchema})

	_, stderr, err := run(t, "inspect", "-C", dir, "shop.Ordr")
	require.Error(t, err)
	assert.Contains(t, stderr, "CLASS NOT FOUND")
	assert.Contains(t, stderr, "shop.Order")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := run(t, "init", "-C", dir, "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Created")

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, config.FormatGo, cfg.Source.Format)
	assert.Equal(t, "esgraph.json", cfg.Output.File)

	_, _, err = run(t, "init", "-C", dir, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitPrompts(t *testing.T) {
	saved := askConfig
	defer func() { askConfig = saved }()
	askConfig = func(cfg *config.Config) error {
		cfg.Source.Format = config.FormatHCL
		cfg.Output.Prefix = "Meta"
		cfg.Policy.Duplicates = "last"
		return nil
	}

	dir := t.TempDir()
	_, _, err := run(t, "init", "-C", dir)
	require.NoError(t, err)

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, config.FormatHCL, cfg.Source.Format)
	assert.Equal(t, "Meta", cfg.Output.Prefix)
	assert.Equal(t, "last", cfg.Policy.Duplicates)

	askConfig = func(cfg *config.Config) error {
		cfg.Output.Prefix = "1x"
		return nil
	}
	_, stderr, err := run(t, "init", "-C", dir, "--force")
	require.Error(t, err)
	assert.Contains(t, stderr, "output.prefix")
}

func TestInitValidators(t *testing.T) {
	assert.NoError(t, identifierPrefix("Q"))
	assert.NoError(t, identifierPrefix(""))
	assert.Error(t, identifierPrefix("1"))
	assert.Error(t, directoryExists("does-not-exist"))
}

func TestCompletion(t *testing.T) {
	stdout, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "esgraph")
}

func TestWatch(t *testing.T) {
	dir := project(t, filepath.Join(t.TempDir(), "graph.json"), map[string]string{"shop.hcl": orderSchema})

	projectDir, verbose, noColor = dir, false, true
	watchDebounce = 20 * time.Millisecond
	defer func() { projectDir, noColor, watchDebounce = ".", false, 0 }()

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr safeBuffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, &stdout, &stderr) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, stdout.String(), "✓ Built graph: 2 node(s), 4 field(s)")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", "audit.hcl"), []byte(badProperty), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "✓ Built graph: 4 node(s)")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, stdout.String(), "1 file(s) changed")
	assert.Contains(t, stderr.String(), "Error[E100]")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, stdout.String(), "Stopped watching")
}
