package yamlconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridci/internal/config"
)

// writeWorkflow writes a YAML workflow into a temp dir and returns its path.
func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Basic(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  build:
    steps:
      - name: compile
        run: go build ./...
      - name: vet
        run: go vet ./...
  test:
    needs: [build]
    steps:
      - name: unit
        run: go test ./...
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, wf.Jobs, 2)

	build := wf.Jobs[0]
	assert.Equal(t, "build", build.ID)
	require.Len(t, build.Steps, 2)
	assert.Equal(t, config.Step{Name: "compile", Run: "go build ./..."}, build.Steps[0])

	test := wf.Jobs[1]
	assert.Equal(t, "test", test.ID)
	assert.Equal(t, []string{"build"}, test.Needs)
}

func TestLoad_PreservesJobDeclarationOrder(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  zeta:
    steps: [{name: s, run: "true"}]
  alpha:
    steps: [{name: s, run: "true"}]
  mid:
    steps: [{name: s, run: "true"}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	ids := make([]string, len(wf.Jobs))
	for i, j := range wf.Jobs {
		ids[i] = j.ID
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
}

func TestLoad_MatrixPreservesOrder(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  test:
    matrix:
      os: [linux, macos]
      go: ["1.21", "1.22"]
    steps:
      - name: unit
        run: go test ./...
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	m := wf.Jobs[0].Matrix
	require.NotNil(t, m)
	require.Len(t, m.Axes, 2)
	assert.Equal(t, config.Axis{Name: "os", Values: []string{"linux", "macos"}}, m.Axes[0])
	assert.Equal(t, config.Axis{Name: "go", Values: []string{"1.21", "1.22"}}, m.Axes[1])
}

func TestLoad_MatrixInlineMapping(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  test:
    matrix: {os: [linux, macos]}
    steps: [{name: unit, run: go test ./...}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	m := wf.Jobs[0].Matrix
	require.NotNil(t, m, "a declared matrix must survive decoding")
	require.Len(t, m.Axes, 1)
	assert.Equal(t, config.Axis{Name: "os", Values: []string{"linux", "macos"}}, m.Axes[0])
}

func TestLoad_NoMatrixMeansNil(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  build:
    steps: [{name: s, run: "true"}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, wf.Jobs[0].Matrix)
}

func TestLoad_WhenKeywords(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  cleanup:
    when: always
    steps: [{name: rm, run: rm -rf tmp}]
  deploy:
    when: on_success
    steps: [{name: ship, run: ship}]
  plain:
    steps: [{name: s, run: "true"}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, wf.Jobs, 3)

	require.NotNil(t, wf.Jobs[0].When)
	assert.Equal(t, config.ConditionAlways, wf.Jobs[0].When.Mode)

	require.NotNil(t, wf.Jobs[1].When)
	assert.Equal(t, config.ConditionDefault, wf.Jobs[1].When.Mode)

	assert.Nil(t, wf.Jobs[2].When)
}

func TestLoad_CustomWhenExpression(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  notify:
    needs: [deploy]
    when: deps.deploy.status == "failed"
    steps: [{name: page, run: page-oncall}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	cond := wf.Jobs[0].When
	require.NotNil(t, cond)
	assert.Equal(t, config.ConditionCustom, cond.Mode)
	require.NotNil(t, cond.Expr)
}

func TestLoad_Timeout(t *testing.T) {
	t.Parallel()

	path := writeWorkflow(t, `
jobs:
  slow:
    timeout: 2m30s
    steps: [{name: wait, run: sleep 300}]
`)

	wf, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute+30*time.Second, wf.Jobs[0].Timeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "no jobs mapping",
			content:  "steps: []\n",
			expected: "no jobs mapping",
		},
		{
			name:     "jobs is not a mapping",
			content:  "jobs: [a, b]\n",
			expected: "must be a mapping",
		},
		{
			name: "invalid when expression",
			content: `
jobs:
  a:
    when: 'deps.b.status =='
    steps: [{name: s, run: "true"}]
`,
			expected: "invalid when expression",
		},
		{
			name: "invalid timeout",
			content: `
jobs:
  a:
    timeout: soon
    steps: [{name: s, run: "true"}]
`,
			expected: "invalid timeout",
		},
		{
			name: "matrix is not a mapping",
			content: `
jobs:
  a:
    matrix: [linux, macos]
    steps: [{name: s, run: "true"}]
`,
			expected: "matrix must be a mapping",
		},
		{
			name:     "unparseable yaml",
			content:  "jobs: {unclosed\n",
			expected: "failed to parse",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeWorkflow(t, tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
