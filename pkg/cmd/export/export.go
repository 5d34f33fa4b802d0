package export

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	xlsxexport "github.com/testvox/testvox/internal/export"
	"github.com/testvox/testvox/internal/metrics"
	"github.com/testvox/testvox/pkg/cmd/cmdutil"
)

const defaultWorkbook = "testvox-results.xlsx"

func NewCmdExport() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export [report files or glob patterns...]",
		Example: "testvox export results/*.xml --output nightly.xlsx",
		Short:   "Export parsed test results to an xlsx workbook.",
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

			timers.Set("export")
			path := viper.GetString("output")
			if err := xlsxexport.WriteWorkbook(path, results); err != nil {
				return errors.Wrap(err, "could not export results")
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", defaultWorkbook, "Path of the xlsx workbook.")

	return cmd
}
