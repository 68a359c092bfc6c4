package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/cli/config"
	"github.com/conduit-lang/esgraph/internal/cli/ui"
	"github.com/conduit-lang/esgraph/internal/compiler"
	"github.com/conduit-lang/esgraph/internal/graph"
	"github.com/conduit-lang/esgraph/internal/watch"
)

var watchDebounce time.Duration

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile the graph whenever declarations change",
		Long: `Watch the source directory and recompile the graph after every change.

Each rebuild is a fresh compilation; nothing is cached between builds. When
output.file is configured the graph file is rewritten whenever it changes.`,
		Example: `  # Watch with the configured source
  esgraph watch

  # Log every pass of each rebuild
  esgraph watch --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a rebuild")

	return cmd
}

// runWatch builds once, then rebuilds on every batch of changes until ctx
// is done.
func runWatch(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rebuilder := watch.NewRebuilder(func(ctx context.Context, log *zap.Logger) (*compiler.Result, error) {
		return compileProject(ctx, cfg, log)
	}, log)

	var mu sync.Mutex
	report := func(files []string) {
		out := rebuilder.Rebuild(ctx, files)
		mu.Lock()
		defer mu.Unlock()
		reportOutcome(stdout, stderr, cfg, out)
	}

	report(nil)

	watcher, err := watch.NewFileWatcher(watch.Config{
		Root:       cfg.Source.Dir,
		Extensions: cfg.WatchExtensions(),
		Ignored:    []string{"*_test.go", "*.swp", "*~"},
		Debounce:   watchDebounce,
		Logger:     log,
	}, func(files []string) error {
		report(files)
		return nil
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	banner.Fprintf(stdout, "Watching %s for %v changes\n", cfg.Source.Dir, cfg.WatchExtensions())
	color.New(color.FgYellow).Fprintln(stdout, "Press Ctrl+C to stop")

	<-ctx.Done()

	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	fmt.Fprintln(stdout, "Stopped watching")
	return nil
}

func reportOutcome(stdout, stderr io.Writer, cfg *config.Config, out watch.Outcome) {
	if len(out.Files) > 0 {
		fmt.Fprintf(stdout, "\n%d file(s) changed\n", len(out.Files))
	}

	if out.Err != nil {
		var loadErr *LoadError
		if errors.As(out.Err, &loadErr) {
			fmt.Fprint(stderr, ui.LoadFailed(loadErr.Format, loadErr.Err, noColor))
			return
		}
		if out.Result != nil {
			ui.PrintDiagnostics(stderr, out.Result.Diagnostics, ui.DiagnosticOptions{ShowInfo: verbose})
		}
		ui.WriteMessage(stderr, ui.MessageOptions{
			Level:   ui.LevelError,
			Context: "build " + out.BuildID,
			Problem: out.Err.Error(),
			NoColor: noColor,
		})
		return
	}

	ui.PrintDiagnostics(stderr, out.Result.Diagnostics, ui.DiagnosticOptions{
		ShowInfo:  verbose,
		NoSummary: len(out.Result.Diagnostics) == 0,
	})

	if !out.Changed {
		fmt.Fprintf(stdout, "Graph unchanged (%s)\n", out.Duration.Round(time.Millisecond))
		return
	}
	if cfg.Output.File != "" {
		if err := graph.WriteToFile(out.Result.Graph, cfg.Output.File); err != nil {
			ui.WriteMessage(stderr, ui.MessageOptions{
				Level:   ui.LevelError,
				Context: "write failed",
				Problem: err.Error(),
				NoColor: noColor,
			})
			return
		}
	}
	ui.WriteSuccess(stdout, fmt.Sprintf("Built graph: %d node(s), %d field(s) in %s",
		out.Result.Graph.Len(), out.Result.Graph.FieldCount(), out.Duration.Round(time.Millisecond)), noColor)
}
