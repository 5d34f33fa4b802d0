package inspect

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/testvox/testvox/internal/metrics"
	"github.com/testvox/testvox/pkg/api"
	"github.com/testvox/testvox/pkg/cmd/cmdutil"
	"github.com/testvox/testvox/pkg/report/slack"
)

// messageWidthMax wraps long failure messages in the table.
const messageWidthMax = 80

type inspectInput struct {
	skipFailed  bool
	skipPassed  bool
	skipSkipped bool
	color       bool
}

func NewCmdInspect() *cobra.Command {
	in := &inspectInput{}
	cmd := &cobra.Command{
		Use:     "inspect [report files or glob patterns...]",
		Example: "testvox inspect results/junit.xml --skip-passed",
		Short:   "Parse test report files and print the results as a table.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.BindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := cmdutil.Patterns(args)
			if err != nil {
				return err
			}
			timers := metrics.NewTimers()
			defer timers.Log()
			defer timers.Stop()

			results, failures, err := cmdutil.LoadResults(patterns, timers)
			if err != nil {
				return err
			}
			for _, f := range failures {
				log.Error(f.Error())
			}
			timers.Set("render")
			_, err = io.WriteString(cmd.OutOrStdout(), in.render(results))
			return err
		},
	}

	cmd.Flags().BoolVar(&in.skipFailed, "skip-failed", false, "Skip printing the failed tests.")
	cmd.Flags().BoolVar(&in.skipPassed, "skip-passed", false, "Skip printing the passed tests.")
	cmd.Flags().BoolVar(&in.skipSkipped, "skip-skipped", false, "Skip printing the skipped tests.")
	cmd.Flags().BoolVar(&in.color, "color", false, "Color the table by overall status.")

	return cmd
}

func (in *inspectInput) skip(s api.TestStatus) bool {
	switch s {
	case api.TestStatusFailed:
		return in.skipFailed
	case api.TestStatusSkipped:
		return in.skipSkipped
	case api.TestStatusPassed:
		return in.skipPassed
	}
	return false
}

// render prints the results table. Counters in the footer cover every result,
// including the ones hidden by the skip flags.
func (in *inspectInput) render(results []api.TestResult) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle("Test results")
	t.AppendHeader(table.Row{"#", "Suite", "Test", "Status", "Seconds", "Failure message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Suite", AutoMerge: true},
		{Name: "Seconds", Align: text.AlignRight},
		{Name: "Failure message", WidthMax: messageWidthMax, WidthMaxEnforcer: text.WrapSoft},
	})

	counts := map[api.TestStatus]int{}
	for idx, tr := range results {
		counts[tr.Status]++
		if in.skip(tr.Status) {
			continue
		}
		seconds := "-"
		if tr.ExecutionTime != nil {
			seconds = slack.FormatSeconds(*tr.ExecutionTime)
		}
		message := ""
		if tr.Status == api.TestStatusFailed {
			message = slack.MissingFailureMessage
			if tr.FailureMessage != nil {
				message = *tr.FailureMessage
			}
		}
		t.AppendRow(table.Row{idx + 1, tr.Suite(), tr.Name, tr.Status.String(), seconds, message})
	}

	if in.color {
		switch {
		case counts[api.TestStatusFailed] > 0:
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		case counts[api.TestStatusSkipped] > 0:
			t.SetStyle(table.StyleColoredBlackOnYellowWhite)
		default:
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		}
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Style().Format.Footer = text.FormatDefault

	t.AppendFooter(table.Row{
		"TOTAL", "", fmt.Sprintf("%d tests", len(results)),
		fmt.Sprintf("%d failed, %d skipped, %d passed",
			counts[api.TestStatusFailed], counts[api.TestStatusSkipped], counts[api.TestStatusPassed]),
		"", "",
	})

	t.Render()
	return buf.String()
}
