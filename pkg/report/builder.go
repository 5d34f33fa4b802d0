// Package report turns parsed test results into a finalized, filtered and ordered
// report, and hands it to a target-specific Reporter for rendering.
package report

import (
	"errors"
	"net/url"
	"sort"

	"github.com/testvox/testvox/pkg/api"
)

// ErrBuilderFinalized is returned when a ReportBuilder is finalized a second time.
var ErrBuilderFinalized = errors.New("report builder already finalized")

// Reporter is a target format able to render itself. Reporters are constructed
// from a finalized Report by a constructor passed to Finalize.
type Reporter interface {
	Render() string
}

// Report is the finalized state handed to reporters: only reportable results,
// ordered worst outcome first.
type Report struct {
	Title   string
	Results []api.TestResult
	Link    *url.URL
}

// ReportBuilder accumulates the report configuration. It is consumed once by Finalize.
// The zero value reports failed tests only, like NewReportBuilder.
type ReportBuilder struct {
	title       string
	testResults []api.TestResult
	reportable  map[api.TestStatus]struct{}
	link        *url.URL
	finalized   bool
}

// NewReportBuilder returns a builder that reports failed tests only.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		reportable: map[api.TestStatus]struct{}{api.TestStatusFailed: {}},
	}
}

func (b *ReportBuilder) WithTitle(title string) *ReportBuilder {
	b.title = title
	return b
}

// WithTestResults replaces the results; the builder keeps its own copy.
func (b *ReportBuilder) WithTestResults(results []api.TestResult) *ReportBuilder {
	b.testResults = append([]api.TestResult(nil), results...)
	return b
}

func (b *ReportBuilder) IncludePassed() *ReportBuilder {
	b.include(api.TestStatusPassed)
	return b
}

func (b *ReportBuilder) IncludeSkipped() *ReportBuilder {
	b.include(api.TestStatusSkipped)
	return b
}

func (b *ReportBuilder) include(s api.TestStatus) {
	if b.reportable == nil {
		b.reportable = map[api.TestStatus]struct{}{api.TestStatusFailed: {}}
	}
	b.reportable[s] = struct{}{}
}

func (b *ReportBuilder) WithLink(link *url.URL) *ReportBuilder {
	b.link = link
	return b
}

// Reportable reports whether results with status s are kept by Finalize.
func (b *ReportBuilder) Reportable(s api.TestStatus) bool {
	if b.reportable == nil {
		return s == api.TestStatusFailed
	}
	_, ok := b.reportable[s]
	return ok
}

// finalize filters and orders the results, and marks the builder spent.
func (b *ReportBuilder) finalize() (Report, error) {
	if b.finalized {
		return Report{}, ErrBuilderFinalized
	}
	b.finalized = true

	kept := make([]api.TestResult, 0, len(b.testResults))
	for _, tr := range b.testResults {
		if b.Reportable(tr.Status) {
			kept = append(kept, tr)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Status.Less(kept[j].Status)
	})

	var link *url.URL
	if b.link != nil {
		u := *b.link
		link = &u
	}
	b.testResults = nil
	return Report{Title: b.title, Results: kept, Link: link}, nil
}

// Finalize consumes the builder and converts the finalized report into the reporter
// built by from. A builder can be finalized only once.
func Finalize[T Reporter](b *ReportBuilder, from func(Report) T) (T, error) {
	r, err := b.finalize()
	if err != nil {
		var zero T
		return zero, err
	}
	return from(r), nil
}
