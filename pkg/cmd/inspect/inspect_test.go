package inspect

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testvox/testvox/pkg/api"
)

func results() []api.TestResult {
	return []api.TestResult{
		api.NewTestResultBuilder().WithName("creates user").WithSuiteName("Tests").
			WithStatus(api.TestStatusPassed).WithExecutionTime(2.113871).Build(),
		api.NewTestResultBuilder().WithName("updates password").WithSuiteName("Tests").
			WithStatus(api.TestStatusFailed).WithExecutionTime(0.982).WithFailureMessage("bad credentials").Build(),
		api.NewTestResultBuilder().WithName("logs in").WithSuiteName("Tests").
			WithStatus(api.TestStatusSkipped).Build(),
		api.NewTestResultBuilder().WithName("no message").WithStatus(api.TestStatusFailed).Build(),
	}
}

func TestRender(t *testing.T) {
	out := (&inspectInput{}).render(results())

	assert.Contains(t, out, "Test results")
	assert.Contains(t, out, "creates user")
	assert.Contains(t, out, "2.113871")
	assert.Contains(t, out, "bad credentials")
	assert.Contains(t, out, "⚠️ missing failure message")
	assert.Contains(t, out, "4 tests")
	assert.Contains(t, out, "2 failed, 1 skipped, 1 passed")
}

func TestRenderSkipFlags(t *testing.T) {
	out := (&inspectInput{skipPassed: true, skipSkipped: true}).render(results())

	assert.NotContains(t, out, "creates user")
	assert.NotContains(t, out, "logs in")
	assert.Contains(t, out, "updates password")
	// footer still counts everything
	assert.Contains(t, out, "2 failed, 1 skipped, 1 passed")

	out = (&inspectInput{skipFailed: true}).render(results())
	assert.NotContains(t, out, "updates password")
	assert.Contains(t, out, "creates user")
}

func TestNewCmdInspect(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "mocha.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tests": [
		{"title": "works", "fullTitle": "Suite works", "state": "passed", "duration": 1500}
	]}`), 0644))

	out := &bytes.Buffer{}
	cmd := NewCmdInspect()
	cmd.SetArgs([]string{path})
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "works")
	assert.Contains(t, out.String(), "Suite")
	assert.Contains(t, out.String(), "1.5")
}
