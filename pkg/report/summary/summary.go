// Package summary renders a finalized report as a YAML digest: status counts,
// per-suite counts, duration statistics and failure message patterns.
package summary

import (
	"strings"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/testvox/testvox/pkg/api"
	"github.com/testvox/testvox/pkg/report"
)

// NoSuite is the suite key of results without a suite name.
const NoSuite = "(none)"

type Counts struct {
	Total   int `yaml:"total"`
	Failed  int `yaml:"failed"`
	Skipped int `yaml:"skipped"`
	Passed  int `yaml:"passed"`
}

func (c *Counts) add(s api.TestStatus) {
	c.Total++
	switch s {
	case api.TestStatusFailed:
		c.Failed++
	case api.TestStatusSkipped:
		c.Skipped++
	case api.TestStatusPassed:
		c.Passed++
	}
}

// DurationStats is computed over the results reporting an execution time, in seconds.
type DurationStats struct {
	Count  int     `yaml:"count"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Total  float64 `yaml:"total"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	P90    float64 `yaml:"p90"`
}

type Failure struct {
	Name    string `yaml:"name"`
	Suite   string `yaml:"suite,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Report is the summary digest.
type Report struct {
	Title           string            `yaml:"title"`
	Link            string            `yaml:"link,omitempty"`
	Counts          Counts            `yaml:"counts"`
	Suites          map[string]Counts `yaml:"suites,omitempty"`
	Durations       *DurationStats    `yaml:"durations,omitempty"`
	FailurePatterns ErrorCounter      `yaml:"failurePatterns,omitempty"`
	Failures        []Failure         `yaml:"failures,omitempty"`
}

var _ report.Reporter = (*Report)(nil)

// From builds the digest of a finalized report.
func From(r report.Report) *Report {
	s := &Report{
		Title:  r.Title,
		Suites: make(map[string]Counts),
	}
	if r.Link != nil {
		s.Link = r.Link.String()
	}

	var durations stats.Float64Data
	var messages []string
	for _, tr := range r.Results {
		s.Counts.add(tr.Status)

		suite := tr.Suite()
		if suite == "" {
			suite = NoSuite
		}
		sc := s.Suites[suite]
		sc.add(tr.Status)
		s.Suites[suite] = sc

		if tr.ExecutionTime != nil {
			durations = append(durations, *tr.ExecutionTime)
		}
		if tr.Status == api.TestStatusFailed {
			f := Failure{Name: tr.Name, Suite: tr.Suite()}
			if tr.FailureMessage != nil {
				f.Message = *tr.FailureMessage
				messages = append(messages, f.Message)
			}
			s.Failures = append(s.Failures, f)
		}
	}

	s.Durations = durationStats(durations)
	if len(messages) > 0 {
		s.FailurePatterns = NewErrorCounter(strings.Join(messages, "\n"), CommonFailurePatterns)
	}
	return s
}

func round(v float64) float64 {
	r, err := stats.Round(v, 6)
	if err != nil {
		return v
	}
	return r
}

func durationStats(data stats.Float64Data) *DurationStats {
	if len(data) == 0 {
		return nil
	}
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	p90, _ := stats.Percentile(data, 90)

	return &DurationStats{
		Count:  len(data),
		Min:    round(min),
		Max:    round(max),
		Total:  round(sum),
		Mean:   round(mean),
		Median: round(median),
		P90:    round(p90),
	}
}

// Render returns the digest as YAML.
func (s *Report) Render() string {
	out, err := yaml.Marshal(s)
	if err != nil {
		log.Errorf("unable to encode summary report: %v", err)
		return ""
	}
	return string(out)
}
