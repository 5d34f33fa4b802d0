package report

import (
	"fmt"
	"net/url"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/testvox/testvox/pkg/api"
)

// CreateTestReportRequest describes a report request.
type CreateTestReportRequest struct {
	// Title of the generated report.
	Title string
	// Contents holds the complete text of each test report file.
	Contents []string
	// IncludePassed adds passed tests to the report.
	IncludePassed bool
	// IncludeSkipped adds skipped tests to the report.
	IncludeSkipped bool
	// Link is an optional URL to the test run, rendered as a button.
	Link *url.URL
}

// Input is the content of one report file and a label used in diagnostics.
type Input struct {
	Source  string
	Content string
}

// FileFailure records a file that could not be parsed. Its results are left out of the report.
type FileFailure struct {
	Source string
	Err    error
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("could not parse %s: %v", f.Source, f.Err)
}

func (f FileFailure) Unwrap() error {
	return f.Err
}

// ParseAll detects and parses every input. Files are parsed concurrently but the
// results are concatenated in input order; failing files are reported and skipped.
func ParseAll(detector *api.Detector, inputs []Input) ([]api.TestResult, []FileFailure) {
	perFile := make([][]api.TestResult, len(inputs))
	errs := make([]error, len(inputs))

	eg := &errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range inputs {
		i := i
		eg.Go(func() error {
			perFile[i], errs[i] = detector.Parse(inputs[i].Content)
			return nil
		})
	}
	_ = eg.Wait()

	var results []api.TestResult
	var failures []FileFailure
	for i, in := range inputs {
		if errs[i] != nil {
			log.Warnf("skipping %s: %v", in.Source, errs[i])
			failures = append(failures, FileFailure{Source: in.Source, Err: errs[i]})
			continue
		}
		log.Debugf("%s: %d test results", in.Source, len(perFile[i]))
		results = append(results, perFile[i]...)
	}
	return results, failures
}

// NewBuilder configures a ReportBuilder from the request, using results as the test results.
func (req *CreateTestReportRequest) NewBuilder(results []api.TestResult) *ReportBuilder {
	b := NewReportBuilder().
		WithTitle(req.Title).
		WithTestResults(results)
	if req.IncludePassed {
		b.IncludePassed()
	}
	if req.IncludeSkipped {
		b.IncludeSkipped()
	}
	if req.Link != nil {
		b.WithLink(req.Link)
	}
	return b
}

// CreateTestReport parses the request contents with the built-in parsers and renders
// them into the reporter built by from. Files that fail to parse are returned alongside
// the report; the report is built from the remaining files.
func CreateTestReport[T Reporter](req CreateTestReportRequest, from func(Report) T) (T, []FileFailure) {
	inputs := make([]Input, len(req.Contents))
	for i, c := range req.Contents {
		inputs[i] = Input{Source: fmt.Sprintf("contents[%d]", i), Content: c}
	}
	results, failures := ParseAll(api.NewDetector(), inputs)

	// a fresh builder cannot already be finalized
	reporter, _ := Finalize(req.NewBuilder(results), from)
	return reporter, failures
}
