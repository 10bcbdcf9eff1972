package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Shugur-Network/loginit"
	"github.com/Shugur-Network/loginit/internal/config"
	"github.com/Shugur-Network/loginit/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// rootCmd defines the main CLI command for loginit
var rootCmd = &cobra.Command{
	Use:   "loginit",
	Short: "loginit resolves and exercises a process-wide logging setup",
	Long: `Resolve a logging configuration from flags and LOG_* environment variables,
print it, or install it and emit sample records to every configured sink.`,
	Example: `
  LOG_DESTINATION=cf loginit show
  loginit emit --server --server-addr graylog:12201 --level debug
  loginit emit --file --file-path /var/log/app --rotation d --backups 7`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Fprintf(os.Stderr, "Error displaying help: %v\n", err)
		}
	},
}

// Execute runs the root command with the provided context
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// builderFromFlags applies only the flags the user set, so unset ones fall
// through to the environment.
func builderFromFlags(flags *pflag.FlagSet) (loginit.InitBuilder, error) {
	appName, _ := flags.GetString("app")
	b := loginit.Builder(appName)

	if flags.Changed("console") {
		v, _ := flags.GetBool("console")
		b = b.LogToConsole(v)
	}
	if flags.Changed("file") {
		v, _ := flags.GetBool("file")
		b = b.LogToFile(v)
	}
	if flags.Changed("server") {
		v, _ := flags.GetBool("server")
		b = b.LogToServer(v)
	}
	if flags.Changed("file-path") {
		v, _ := flags.GetString("file-path")
		b = b.LogFilePath(v)
	}
	if flags.Changed("rotation") {
		v, _ := flags.GetString("rotation")
		spec, err := config.ParseRotation(v)
		if err != nil {
			return b, fmt.Errorf("--rotation: %w", err)
		}
		b = b.LogFileRotation(spec.Period)
		if spec.Keep > 0 {
			b = b.LogFileBackups(spec.Keep)
		}
	}
	if flags.Changed("backups") {
		v, _ := flags.GetInt("backups")
		b = b.LogFileBackups(v)
	}
	if flags.Changed("server-addr") {
		v, _ := flags.GetString("server-addr")
		b = b.LogServerAddress(v)
	}
	if flags.Changed("transport") {
		v, _ := flags.GetString("transport")
		b = b.LogServerTransport(v)
	}
	if flags.Changed("level") {
		v, _ := flags.GetString("level")
		lvl, err := config.ParseLevel(v)
		if err != nil {
			return b, fmt.Errorf("--level: %w", err)
		}
		b = b.Level(lvl)
	}
	if flags.Changed("filter") {
		v, _ := flags.GetString("filter")
		b = b.Filter(v)
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		b = b.Format(v)
	}
	return b.Version(version), nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration without installing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := builderFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := b.Resolve()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg)
			for _, w := range cfg.Warnings {
				fmt.Fprintln(cmd.OutOrStdout(), "warning:", w)
			}
			return nil
		},
	}
}

func newEmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Install the configuration and emit sample records at every level",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := builderFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := b.Init()
			if err != nil {
				return err
			}
			defer func() {
				if err := loginit.Shutdown(); err != nil {
					fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
				}
			}()

			count, _ := cmd.Flags().GetInt("count")
			interval, _ := cmd.Flags().GetDuration("interval")
			component, _ := cmd.Flags().GetString("component")

			ctx := logger.WithLogger(cmd.Context(), loginit.Named(component))
			log := logger.FromContext(ctx)
			log.Info("emitting sample records", zap.Stringer("config", cfg), zap.Int("count", count))

			for i := 0; i < count; i++ {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if ce := log.Check(loginit.TraceLevel, "sample"); ce != nil {
					ce.Write(zap.Int("seq", i))
				}
				log.Debug("sample", zap.Int("seq", i))
				log.Info("sample", zap.Int("seq", i))
				log.Warn("sample", zap.Int("seq", i))
				log.Error("sample", zap.Int("seq", i))
				if interval > 0 && i < count-1 {
					time.Sleep(interval)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("count", 1, "Number of rounds of sample records")
	cmd.Flags().Duration("interval", 0, "Pause between rounds")
	cmd.Flags().String("component", "sample", "Logger name the records are emitted under")
	return cmd
}

func init() {
	// Add persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.String("app", "loginit", "Application name attached to records")
	pf.Bool("console", false, "Log to the console")
	pf.Bool("file", false, "Log to a file")
	pf.Bool("server", false, "Ship logs to a GELF server")
	pf.String("file-path", "", "Log file, or directory for <app>.log")
	pf.String("rotation", "", "File rotation <d|h|m|n>[:<backups>]")
	pf.Int("backups", 0, "Rotated files to keep (0 keeps all)")
	pf.String("server-addr", "", "GELF server as host:port")
	pf.String("transport", "udp", "GELF transport (udp or tcp)")
	pf.String("level", "info", "Default level (error, warn, info, debug, trace)")
	pf.String("filter", "", "Filter directives, e.g. info,storage=debug")
	pf.String("format", "console", "Encoder for console and file output (console or json)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of loginit",
		Run: func(cmd *cobra.Command, args []string) {
			if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
				fmt.Fprintln(cmd.OutOrStdout(), GetFullVersionInfo())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), GetVersionWithPrefix())
			}
		},
	}
	versionCmd.Flags().BoolP("detailed", "d", false, "Show detailed version information")

	rootCmd.AddCommand(versionCmd, newShowCmd(), newEmitCmd())
}
