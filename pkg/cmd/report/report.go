package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testvox/testvox/internal/metrics"
	"github.com/testvox/testvox/internal/publish"
	"github.com/testvox/testvox/pkg/cmd/cmdutil"
	"github.com/testvox/testvox/pkg/report"
	"github.com/testvox/testvox/pkg/report/html"
	"github.com/testvox/testvox/pkg/report/slack"
	"github.com/testvox/testvox/pkg/report/summary"
)

// Output formats.
const (
	FormatSlack   = "slack"
	FormatSummary = "summary"
	FormatHTML    = "html"
)

var formats = map[string]struct {
	contentType string
	render      func(b *report.ReportBuilder) (string, error)
}{
	FormatSlack:   {contentType: "application/json", render: renderWith(slack.From)},
	FormatSummary: {contentType: "application/yaml", render: renderWith(summary.From)},
	FormatHTML:    {contentType: "text/html; charset=utf-8", render: renderWith(html.From)},
}

func renderWith[T report.Reporter](from func(report.Report) T) func(b *report.ReportBuilder) (string, error) {
	return func(b *report.ReportBuilder) (string, error) {
		r, err := report.Finalize(b, from)
		if err != nil {
			return "", err
		}
		return r.Render(), nil
	}
}

type Input struct {
	title          string
	format         string
	output         string
	includePassed  bool
	includeSkipped bool
	link           string
	webhookURL     string
	s3Bucket       string
	s3Region       string
	s3Key          string
	validate       bool
	dryRun         bool
	strict         bool
}

// loadInput reads the flags through viper so the environment and the config file apply.
func loadInput() *Input {
	return &Input{
		title:          viper.GetString("title"),
		format:         viper.GetString("format"),
		output:         viper.GetString("output"),
		includePassed:  viper.GetBool("include-passed"),
		includeSkipped: viper.GetBool("include-skipped"),
		link:           viper.GetString("link"),
		webhookURL:     viper.GetString("webhook-url"),
		s3Bucket:       viper.GetString("s3-bucket"),
		s3Region:       viper.GetString("s3-region"),
		s3Key:          viper.GetString("s3-key"),
		validate:       viper.GetBool("validate"),
		dryRun:         viper.GetBool("dry-run"),
		strict:         viper.GetBool("strict"),
	}
}

func NewCmdReport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [report files or glob patterns...]",
		Short: "Create a test report from JUnit XML and Mocha JSON files.",
		Long: `Create a test report from JUnit XML and Mocha JSON files. The report is rendered as a Slack
message (default), a YAML summary or an HTML page, and can be posted to a Slack incoming webhook
or uploaded to an S3 bucket.`,
		Example: `  testvox report results/*.xml --title "Nightly e2e" --include-skipped
  testvox report junit.xml.xz --webhook-url "$SLACK_WEBHOOK" --link "$CI_JOB_URL"
  testvox report mocha.json --format html --output report.html`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.BindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := cmdutil.Patterns(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), loadInput(), patterns, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("title", "t", "Test report", "Title of the report.")
	cmd.Flags().StringP("format", "f", FormatSlack, "Output format: slack, summary or html.")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout.")
	cmd.Flags().Bool("include-passed", false, "Include passed tests in the report.")
	cmd.Flags().Bool("include-skipped", false, "Include skipped tests in the report.")
	cmd.Flags().String("link", "", "URL of the test run, added as a button to the report.")
	cmd.Flags().String("webhook-url", "", "Slack incoming webhook URL to post the report to. Requires --format slack.")
	cmd.Flags().String("s3-bucket", "", "S3 bucket to upload the rendered report to.")
	cmd.Flags().String("s3-region", "us-east-1", "Region of the S3 bucket.")
	cmd.Flags().String("s3-key", "", "Object key of the uploaded report. Example: reports/nightly/slack.json")
	cmd.Flags().Bool("validate", false, "Validate the Slack payload against the Block Kit schema.")
	cmd.Flags().Bool("dry-run", false, "Render the report but skip the webhook and S3 delivery.")
	cmd.Flags().Bool("strict", false, "Fail when any report file cannot be read or parsed.")

	return cmd
}

func (in *Input) check() error {
	if _, ok := formats[in.format]; !ok {
		return &cmdutil.ConfigurationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", in.format)}
	}
	if in.webhookURL != "" && in.format != FormatSlack {
		return &cmdutil.ConfigurationError{Field: "webhook-url", Reason: "webhooks accept the slack format only"}
	}
	if in.validate && in.format != FormatSlack {
		return &cmdutil.ConfigurationError{Field: "validate", Reason: "only the slack format has a schema"}
	}
	if in.s3Bucket != "" && in.s3Key == "" {
		return &cmdutil.ConfigurationError{Field: "s3-key", Reason: "required when s3-bucket is set"}
	}
	return nil
}

// run reads, parses and renders the report, then delivers it.
func run(ctx context.Context, in *Input, patterns []string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := in.check(); err != nil {
		return err
	}
	link, err := cmdutil.ParseLink(in.link)
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
	if len(failures) > 0 {
		for _, f := range failures {
			log.Error(f.Error())
		}
		if in.strict {
			return fmt.Errorf("%d report files could not be parsed", len(failures))
		}
	}
	log.Infof("%d test results parsed", len(results))

	timers.Set("render")
	req := report.CreateTestReportRequest{
		Title:          in.title,
		IncludePassed:  in.includePassed,
		IncludeSkipped: in.includeSkipped,
		Link:           link,
	}
	format := formats[in.format]
	rendered, err := format.render(req.NewBuilder(results))
	if err != nil {
		return errors.Wrap(err, "could not render report")
	}

	if in.validate {
		if err := slack.Validate([]byte(rendered)); err != nil {
			return err
		}
		log.Debug("slack payload is valid")
	}

	if err := writeOutput(in.output, rendered, stdout); err != nil {
		return err
	}

	timers.Set("publish")
	if in.webhookURL != "" {
		if in.dryRun {
			log.Warnf("DRY-RUN mode: skipping webhook delivery")
		} else if err := publish.NewWebhook(in.webhookURL).Post(ctx, []byte(rendered)); err != nil {
			return errors.Wrap(err, "could not post report to webhook")
		}
	}
	if in.s3Bucket != "" {
		p, err := publish.NewS3Publisher(publish.S3Config{
			Bucket: in.s3Bucket,
			Region: in.s3Region,
			Key:    in.s3Key,
			DryRun: in.dryRun,
		})
		if err != nil {
			return err
		}
		meta := map[string]string{"title": in.title, "format": in.format}
		if err := p.Publish(ctx, []byte(rendered), format.contentType, meta); err != nil {
			return errors.Wrap(err, "could not upload report")
		}
	}
	return nil
}

func writeOutput(path, rendered string, stdout io.Writer) error {
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	if path == "" {
		_, err := io.WriteString(stdout, rendered)
		return err
	}
	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return errors.Wrapf(err, "could not write report to %s", path)
	}
	log.Infof("report saved to %s", path)
	return nil
}
