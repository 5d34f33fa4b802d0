package report

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testvox/testvox/pkg/api"
)

// captured is a Reporter that keeps the finalized report for inspection.
type captured struct {
	report Report
}

func (c *captured) Render() string { return c.report.Title }

func capture(r Report) *captured { return &captured{report: r} }

func result(name string, status api.TestStatus) api.TestResult {
	return api.NewTestResultBuilder().WithName(name).WithStatus(status).Build()
}

func names(results []api.TestResult) []string {
	out := make([]string, 0, len(results))
	for _, tr := range results {
		out = append(out, tr.Name)
	}
	return out
}

func mixedResults() []api.TestResult {
	return []api.TestResult{
		result("p1", api.TestStatusPassed),
		result("f1", api.TestStatusFailed),
		result("s1", api.TestStatusSkipped),
		result("p2", api.TestStatusPassed),
		result("f2", api.TestStatusFailed),
		result("s2", api.TestStatusSkipped),
	}
}

func TestReportBuilderDefaults(t *testing.T) {
	b := NewReportBuilder()
	assert.True(t, b.Reportable(api.TestStatusFailed))
	assert.False(t, b.Reportable(api.TestStatusSkipped))
	assert.False(t, b.Reportable(api.TestStatusPassed))

	c, err := Finalize(b.WithTestResults(mixedResults()), capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, names(c.report.Results))
	assert.Equal(t, "", c.report.Title)
	assert.Nil(t, c.report.Link)
}

func TestReportBuilderZeroValue(t *testing.T) {
	var b ReportBuilder
	assert.True(t, b.Reportable(api.TestStatusFailed))
	assert.False(t, b.Reportable(api.TestStatusSkipped))

	c, err := Finalize(b.WithTestResults(mixedResults()), capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, names(c.report.Results))

	var withSkipped ReportBuilder
	require.NotPanics(t, func() { withSkipped.IncludeSkipped() })
	c, err = Finalize(withSkipped.WithTestResults(mixedResults()), capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2", "s1", "s2"}, names(c.report.Results))
}

func TestReportBuilderFilterAndOrder(t *testing.T) {
	tests := []struct {
		name           string
		includePassed  bool
		includeSkipped bool
		want           []string
	}{
		{name: "failed only", want: []string{"f1", "f2"}},
		{name: "with skipped", includeSkipped: true, want: []string{"f1", "f2", "s1", "s2"}},
		{name: "with passed", includePassed: true, want: []string{"f1", "f2", "p1", "p2"}},
		{name: "everything", includePassed: true, includeSkipped: true, want: []string{"f1", "f2", "s1", "s2", "p1", "p2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewReportBuilder().WithTitle("t").WithTestResults(mixedResults())
			if tt.includePassed {
				b.IncludePassed()
			}
			if tt.includeSkipped {
				b.IncludeSkipped()
			}
			c, err := Finalize(b, capture)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(c.report.Results))
		})
	}
}

func TestReportBuilderIncludeIsIdempotent(t *testing.T) {
	once, err := Finalize(NewReportBuilder().WithTestResults(mixedResults()).IncludePassed(), capture)
	require.NoError(t, err)
	twice, err := Finalize(NewReportBuilder().WithTestResults(mixedResults()).IncludePassed().IncludePassed(), capture)
	require.NoError(t, err)
	assert.Equal(t, names(once.report.Results), names(twice.report.Results))
}

func TestReportBuilderWithTestResultsReplaces(t *testing.T) {
	b := NewReportBuilder().
		WithTestResults([]api.TestResult{result("old", api.TestStatusFailed)}).
		WithTestResults([]api.TestResult{result("new", api.TestStatusFailed)})

	c, err := Finalize(b, capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, names(c.report.Results))
}

func TestReportBuilderDoesNotAliasInput(t *testing.T) {
	in := []api.TestResult{result("a", api.TestStatusFailed)}
	b := NewReportBuilder().WithTestResults(in)
	in[0] = result("changed", api.TestStatusFailed)

	c, err := Finalize(b, capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(c.report.Results))
}

func TestReportBuilderLink(t *testing.T) {
	link, err := url.Parse("http://localhost/test-run")
	require.NoError(t, err)

	c, err := Finalize(NewReportBuilder().WithTitle("linked").WithLink(link), capture)
	require.NoError(t, err)
	require.NotNil(t, c.report.Link)
	assert.Equal(t, "http://localhost/test-run", c.report.Link.String())
	assert.Equal(t, "linked", c.Render())

	link.Path = "/other"
	assert.Equal(t, "/test-run", c.report.Link.Path)
}

func TestReportBuilderFinalizeOnce(t *testing.T) {
	b := NewReportBuilder().WithTestResults(mixedResults())

	_, err := Finalize(b, capture)
	require.NoError(t, err)

	c, err := Finalize(b, capture)
	assert.ErrorIs(t, err, ErrBuilderFinalized)
	assert.Nil(t, c)
}
