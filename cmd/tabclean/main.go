package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/logger"
	"github.com/ajitpratap0/tabclean/pkg/transform"

	// Import all available connectors to register them
	_ "github.com/ajitpratap0/tabclean/pkg/connector/destinations"
	_ "github.com/ajitpratap0/tabclean/pkg/connector/sources"
)

var version = "0.1.0"

// Settings keys shared by flags and TABCLEAN_* environment variables.
const (
	keyWorkers      = "workers"
	keyLogLevel     = "log-level"
	keyLogFormat    = "log-format"
	keyReportFormat = "report-format"
	keyReportFile   = "report-file"
	keyMetricsFile  = "metrics-file"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(viper.New()).ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	v.SetEnvPrefix("TABCLEAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tabclean",
		Short: "Declarative cleaning of tabular data files",
		Long: `tabclean maps messy spreadsheet and CSV columns onto a fixed target schema.
Each output column is derived from a source column through a chain of transforms
declared in a YAML file, then duplicate and allowed-value rules are applied and a
quality report is printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    v.GetString(keyLogLevel),
				Encoding: v.GetString(keyLogFormat),
			})
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	flags.String(keyLogFormat, "console", "Log encoding (console, json)")
	_ = v.BindPFlag(keyLogLevel, flags.Lookup(keyLogLevel))
	_ = v.BindPFlag(keyLogFormat, flags.Lookup(keyLogFormat))

	root.AddCommand(
		newRunCommand(v),
		newValidateCommand(),
		newTransformsCommand(),
		newConnectorsCommand(),
		newVersionCommand(),
	)
	return root
}

func newValidateCommand() *cobra.Command {
	var configFile string
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a cleaning configuration without reading any data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := compileOnly(cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printConfig {
				data, err := config.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			fmt.Fprintf(out, "%s: %d columns, output format %s\n", configFile, len(cfg.Mappings), cfg.Output.Format)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the YAML configuration (required)")
	cmd.Flags().BoolVar(&printConfig, "print", false, "Print the effective configuration with defaults filled in")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newTransformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List the available column transforms",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range transform.Names() {
				info, _ := transform.Describe(name)
				fmt.Fprintf(out, "  %-20s %s\n", name, info.Summary)
				if len(info.Params) > 0 {
					fmt.Fprintf(out, "  %-20s parameters: %s\n", "", strings.Join(info.Params, ", "))
				}
			}
		},
	}
}

// Lists the registered connectors
func newConnectorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connectors",
		Short: "List the supported input and output file types",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			list := func(t core.ConnectorType, names []string) {
				for _, name := range names {
					var exts, desc string
					if info, err := registry.GetConnectorInfo(t, name); err == nil {
						exts, desc = strings.Join(info.Extensions, " "), info.Description
					}
					fmt.Fprintf(out, "  %-12s %-6s %-28s %s\n", t, name, exts, desc)
				}
			}
			list(core.ConnectorTypeSource, registry.ListSources())
			list(core.ConnectorTypeDestination, registry.ListDestinations())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tabclean v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
