package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/config"
)

var version = "dev"

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	v        *viper.Viper
	settings *config.Settings
	cfgFile  string
	envFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "nestegg",
		Short: "🥚 Savings goals and a transaction inbox",
		Long: `nest-egg tracks savings goals funded by reservations, keeps a triage inbox
for imported CSV and OFX statements, and serves the same operations over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/nestegg/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file loaded before the environment is read (default: ./.env if present)")
	flags.String("db", "", "database path (default: "+config.DefaultDatabasePath+")")
	flags.String("owner", "", "owner id every command acts for")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("owner.id", flags.Lookup("owner"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(a.goalsCmd())
	root.AddCommand(a.reserveCmd())
	root.AddCommand(a.txCmd())
	root.AddCommand(a.importCmd())
	root.AddCommand(a.mappingsCmd())
	root.AddCommand(a.categoriesCmd())
	root.AddCommand(a.profilesCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	settings, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	level, err := common.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	a.settings = settings
	slog.Debug("Loaded configuration",
		"database", settings.DatabasePath,
		"owner", settings.OwnerID)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nestegg version", version)
		},
	}
}
