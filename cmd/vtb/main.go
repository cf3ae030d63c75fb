// vtb is a hierarchical task tracker with a validated lifecycle,
// dependency graph, and JSONL export/import.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/config"
	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/storage/sqlite"
	"github.com/spineworks/vertebrae/internal/ui"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// App carries everything a command needs. There is no package-level state:
// the app is built once in PersistentPreRunE and threaded to every command
// explicitly.
type App struct {
	Config *config.Config
	Store  *sqlite.Store
	Tasks  *repo.TaskRepository
	Rels   *repo.RelationshipRepository
}

// Close releases the store.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// storeless commands run without opening the database.
var storeless = map[string]bool{
	"init":    true,
	"help":    true,
	"version": true,
}

func newRootCmd() *cobra.Command {
	app := &App{}
	var dbOverride string

	root := &cobra.Command{
		Use:           "vtb",
		Short:         "Track hierarchical, interdependent tasks with a controlled lifecycle",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if storeless[cmd.Name()] {
				return nil
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cwd)
			if err != nil {
				return err
			}
			if dbOverride != "" {
				cfg.DBPath = dbOverride
			}
			ui.Configure(cfg.Color)

			store, err := sqlite.New(cmd.Context(), cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			app.Config = cfg
			app.Store = store
			app.Tasks = repo.NewTaskRepository(store)
			app.Rels = repo.NewRelationshipRepository(store)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}
	root.PersistentFlags().StringVar(&dbOverride, "db", "", "database path (overrides config)")

	root.AddCommand(
		newInitCmd(),
		newAddCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newTriageCmd(app),
		newStartCmd(app),
		newSubmitCmd(app),
		newDoneCmd(app),
		newRejectCmd(app),
		newTransitionToCmd(app),
		newSectionCmd(app),
		newStepDoneCmd(app),
		newCriterionRefCmd(app),
		newReviewCmd(app),
		newDepCmd(app),
		newBlockersCmd(app),
		newPathCmd(app),
		newParentCmd(app),
		newDeleteCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newReadyCmd(app),
		newTuiCmd(app),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("✗"), err)
		os.Exit(1)
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a .vtb directory with a default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := config.Init(cwd)
			if err != nil {
				return err
			}
			fmt.Printf("%s initialized %s\n", color.GreenString("✓"), path)
			return nil
		},
	}
}
