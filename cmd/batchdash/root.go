package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/batch-dashboard/internal/config"
	"github.com/Sternrassler/batch-dashboard/internal/tui"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/Sternrassler/batch-dashboard/pkg/metrics"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// runtime holds what every command needs after flags are parsed.
type runtime struct {
	cfgFile string
	cfg     config.Config
	logger  zerolog.Logger
	closers []io.Closer
}

// rootCmd is the root Cobra command that gets called from main. All other
// sub-commands are registered here.
func rootCmd() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "batchdash",
		Short: "batchdash browses Spring Batch job instances, executions and statistics.",
		Long: `batchdash browses Spring Batch job instances, executions and statistics.

Without a sub-command it starts the terminal dashboard. Settings are read from
flags, BATCHDASH_* environment variables and $HOME/.batchdash.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd, cmd.Name() == "batchdash")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runDashboard(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&rt.cfgFile, "config", "", "config file (default $HOME/.batchdash.yaml)")
	config.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		getCmd(rt),
		exportCmd(rt),
		versionCmd(),
	)

	return cmd
}

// load resolves the configuration and sets up logging. The dashboard owns the
// terminal, so it only logs when a log file is configured.
func (rt *runtime) load(cmd *cobra.Command, interactive bool) error {
	cfg, err := config.Load(cmd.Flags(), rt.cfgFile)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	if interactive && lc.File == "" {
		lc.Level = logging.LevelDisabled
	}
	logger, closer, err := logging.SetupFile(lc)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, closer)
	rt.logger = logger.With().Str("component", "batchdash").Logger()
	return nil
}

func (rt *runtime) close() {
	for _, c := range rt.closers {
		c.Close()
	}
	rt.closers = nil
}

// newApp creates the application context and starts the metrics endpoint
// when one is configured. The returned stop function undoes both.
func (rt *runtime) newApp(ctx context.Context) (*dashboard.App, func(), error) {
	app, err := dashboard.NewApp(rt.cfg.Dashboard())
	if err != nil {
		return nil, nil, fmt.Errorf("create dashboard: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	if addr := rt.cfg.MetricsAddr; addr != "" {
		go func() {
			defer close(done)
			if err := metrics.Serve(ctx, addr, rt.logger); err != nil {
				rt.logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	} else {
		close(done)
	}

	stop := func() {
		cancel()
		<-done
		if err := app.Close(); err != nil {
			rt.logger.Warn().Err(err).Msg("Close failed")
		}
	}
	return app, stop, nil
}

func (rt *runtime) runDashboard(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, stop, err := rt.newApp(ctx)
	if err != nil {
		return err
	}
	defer stop()

	model, err := tui.New(app)
	if err != nil {
		return fmt.Errorf("open dashboard: %w", err)
	}

	rt.logger.Info().
		Str("base_url", rt.cfg.BaseURL).
		Str("location", rt.cfg.Location).
		Msg("Starting dashboard")

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	final, err := program.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	rt.logger.Info().Msg("Dashboard stopped")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "batchdash %s\n", version)
			return err
		},
	}
}
