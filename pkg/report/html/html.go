// Package html renders a finalized report as a standalone HTML page with an
// outcome chart and a per-test duration chart.
package html

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	log "github.com/sirupsen/logrus"

	"github.com/testvox/testvox/pkg/api"
	"github.com/testvox/testvox/pkg/report"
)

// Chart IDs are fixed so the same report always renders the same page.
const (
	StatusChartID   = "testvox-status"
	DurationChartID = "testvox-durations"
)

const (
	DefaultTitle = "Test report"
	NoResults    = "⚠️ unable to find test results"
)

// Chart options are written unescaped into a script block, so user text placed
// in them is HTML escaped and links are percent encoded.
var linkEscaper = strings.NewReplacer("<", "%3C", ">", "%3E", `"`, "%22")

// Report is an HTML page built from a finalized report.
type Report struct {
	page *components.Page
}

var _ report.Reporter = (*Report)(nil)

// From builds the page of a finalized report.
func From(r report.Report) *Report {
	page := components.NewPage()
	page.PageTitle = r.Title
	if page.PageTitle == "" {
		page.PageTitle = DefaultTitle
	}

	link := ""
	if r.Link != nil {
		link = linkEscaper.Replace(r.Link.String())
	}

	page.AddCharts(
		statusChart(template.HTMLEscapeString(r.Title), link, r.Results),
		durationChart(r.Results),
	)
	return &Report{page: page}
}

func statusChart(title, link string, results []api.TestResult) *charts.Pie {
	counts := map[api.TestStatus]int{}
	for _, tr := range results {
		counts[tr.Status]++
	}

	subtitle := ""
	if len(results) == 0 {
		subtitle = NoResults
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: StatusChartID}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Link:     link,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
	)

	data := make([]opts.PieData, 0, 3)
	for _, s := range []api.TestStatus{api.TestStatusFailed, api.TestStatusSkipped, api.TestStatusPassed} {
		if counts[s] == 0 {
			continue
		}
		data = append(data, opts.PieData{Name: s.String(), Value: counts[s]})
	}
	pie.AddSeries("status", data)
	return pie
}

func durationChart(results []api.TestResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: DurationChartID}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Execution time",
			Subtitle: "seconds",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)

	names := make([]string, 0, len(results))
	data := make([]opts.BarData, 0, len(results))
	for _, tr := range results {
		if tr.ExecutionTime == nil {
			continue
		}
		names = append(names, template.HTMLEscapeString(tr.Name))
		data = append(data, opts.BarData{Name: tr.Status.String(), Value: *tr.ExecutionTime})
	}
	bar.SetXAxis(names).AddSeries("duration", data)
	return bar
}

// Render returns the HTML page.
func (r *Report) Render() string {
	buf := &bytes.Buffer{}
	if err := r.page.Render(buf); err != nil {
		log.Errorf("unable to render html report: %v", err)
		return ""
	}
	return buf.String()
}
