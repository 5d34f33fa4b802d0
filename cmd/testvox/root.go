package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/adrg/xdg"
	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testvox/testvox/pkg/cmd/export"
	"github.com/testvox/testvox/pkg/cmd/inspect"
	"github.com/testvox/testvox/pkg/cmd/report"
	"github.com/testvox/testvox/pkg/version"
)

const (
	envPrefix      = "TESTVOX"
	configFileName = "testvox/config.yaml"
)

// envKeyReplacer maps flag names to variables, e.g. TESTVOX_WEBHOOK_URL for webhook-url.
var envKeyReplacer = strings.NewReplacer("-", "_")

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// NewRootCmd builds the testvox command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testvox",
		Short: "testvox",
		Long: `testvox turns JUnit XML and Mocha JSON test reports into messages for humans: a Slack
Block Kit payload, a YAML summary or an HTML page.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default is $XDG_CONFIG_HOME/"+configFileName+")")
	cmd.PersistentFlags().String("log-level", "info", "logging level")
	cmd.PersistentFlags().String("log-file", "", "also write logs to this file")
	for _, flag := range []string{"config", "log-level", "log-file"} {
		if err := viper.BindPFlag(flag, cmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s\n", flag)
		}
	}

	// Link in child commands
	cmd.AddCommand(report.NewCmdReport())
	cmd.AddCommand(inspect.NewCmdInspect())
	cmd.AddCommand(export.NewCmdExport())
	cmd.AddCommand(version.NewCmdVersion())

	return cmd
}

// setupLogging configures logrus from the log-level and log-file settings.
// stdout is kept for command output.
func setupLogging() error {
	logrusLevel, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(logrusLevel)

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stderr)

	logFile := viper.GetString("log-file")
	if logFile == "" {
		return nil
	}
	fdLog, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		log.Errorf("error opening file %s: %v", logFile, err)
		return nil
	}
	log.AddHook(&logwriter.Hook{
		Writer: fdLog,
		LogLevels: []log.Level{
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
			log.WarnLevel,
			log.InfoLevel,
			log.DebugLevel,
			log.TraceLevel,
		},
	})
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv() // read in environment variables that match

	cfgFile := viper.GetString("config")
	if cfgFile == "" {
		found, err := xdg.SearchConfigFile(configFileName)
		if err != nil {
			log.Debugf("no config file: %v", err)
			return
		}
		cfgFile = found
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("unable to read config file %s: %v", cfgFile, err)
	}
	log.Debugf("using config file %s", viper.ConfigFileUsed())
}
