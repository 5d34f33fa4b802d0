// Package cmdutil holds helpers shared by the testvox commands.
package cmdutil

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testvox/testvox/internal/metrics"
	"github.com/testvox/testvox/internal/reader"
	"github.com/testvox/testvox/pkg/api"
	"github.com/testvox/testvox/pkg/report"
)

// ConfigurationError reports an invalid combination of flags, config file entries or arguments.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// BindFlags binds the command flags to viper, so values can also come from
// the environment or the config file. Called from PreRunE so only the running
// command owns the keys.
func BindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// Patterns returns the report file patterns: the positional arguments, or the
// reports config entry when no argument is given.
func Patterns(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if patterns := viper.GetStringSlice("reports"); len(patterns) > 0 {
		return patterns, nil
	}
	return nil, &ConfigurationError{Field: "reports", Reason: "no report file or pattern given"}
}

// ParseLink validates an absolute http(s) link. An empty string is no link.
func ParseLink(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigurationError{Field: "link", Reason: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Field: "link", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", raw)}
	}
	return u, nil
}

// LoadResults expands the patterns, reads every file and parses it. Files that
// cannot be read or parsed are returned as failures. The read and parse stages
// are timed on timers.
func LoadResults(patterns []string, timers *metrics.Timers) ([]api.TestResult, []report.FileFailure, error) {
	timers.Set("read")
	files, err := reader.Expand(patterns)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not resolve report files")
	}
	if len(files) == 0 {
		return nil, nil, &ConfigurationError{Field: "reports", Reason: "no file matched the given patterns"}
	}
	log.Debugf("found %d report files", len(files))

	inputs, failures := reader.ReadAll(files)

	timers.Set("parse")
	results, parseFailures := report.ParseAll(api.NewDetector(), inputs)
	return results, append(failures, parseFailures...), nil
}
