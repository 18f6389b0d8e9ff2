package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/industry-go/internal/application/common"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
	verbose    bool

	loadApp AppLoader
)

// NewRootCommand creates the root command for the CLI. loader wires the application
// for commands that need static data, persistence or the market feed.
func NewRootCommand(loader AppLoader) *cobra.Command {
	loadApp = loader

	rootCmd := &cobra.Command{
		Use:   "industry",
		Short: "Industry calculator - reactions, manufacturing and market prices",
		Long: `Industry computes reaction chains, manufacturing, copying and invention jobs
as process trees, selects the best facilities for them and keeps market price
estimates up to date.

Examples:
  industry react 17945 --cycles 720 --system 30000142 --installation 16869 --reprocess --feedback
  industry react-exact 17961 --units 2000 --station 60003760
  industry manufacture 691 --runs 10 --station 60003760 --depth 2
  industry facility best --activity manufacturing --subject 691 --station 60003760
  industry price update 34 35 36 --region 10000002
  industry price get 34
  industry process list`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml, ./configs, /etc/industry)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewReactCommand())
	rootCmd.AddCommand(NewReactExactCommand())
	rootCmd.AddCommand(NewManufactureCommand())
	rootCmd.AddCommand(NewCopyCommand())
	rootCmd.AddCommand(NewInventCommand())
	rootCmd.AddCommand(NewReprocessCommand())
	rootCmd.AddCommand(NewFacilityCommand())
	rootCmd.AddCommand(NewPriceCommand())
	rootCmd.AddCommand(NewIndicesCommand())
	rootCmd.AddCommand(NewProcessCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// withApp loads the application, puts its logger on the context and runs fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	if loadApp == nil {
		return fmt.Errorf("application loader not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := loadApp(ctx, LoadOptions{ConfigPath: configPath, Verbose: verbose})
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Logger != nil {
		ctx = common.WithLogger(ctx, app.Logger)
	}
	return fn(ctx, app)
}

// Execute runs the root command
func Execute(loader AppLoader) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(loader)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
