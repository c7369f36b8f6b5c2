package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"soundminer/internal/acquire"
	"soundminer/internal/identify"
	"soundminer/internal/organizer"
	"soundminer/internal/preflight"
	"soundminer/internal/resolve"
	"soundminer/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every queued URL to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "soundminer.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another soundminer run is already in progress")
			}
			defer lock.Unlock()

			out := cmd.OutOrStdout()
			if !skipPreflight {
				failed := false
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					status := "ok"
					if !result.Passed {
						status = "FAIL"
						failed = true
					}
					fmt.Fprintf(out, "preflight %-22s %s (%s)\n", result.Name, status, result.Detail)
				}
				if failed {
					return errors.New("preflight checks failed; fix the environment or pass --skip-preflight")
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stages := workflow.StageSet{
				Acquirer:   acquire.NewAcquirer(cfg, store, logger),
				Identifier: identify.NewIdentifier(cfg, store, logger),
				Resolver:   resolve.NewResolver(cfg, store, logger),
				Organizer:  organizer.NewOrganizer(cfg, store, logger),
			}

			interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			progress := func(p workflow.Progress) {
				if !interactive {
					return
				}
				fmt.Fprintf(out, "[%d/%d] %s: %s (%s)\n", p.Index, p.Total, p.Stage, p.Message, p.URL)
			}

			manager := workflow.NewManager(cfg, store, logger, stages, workflow.WithProgress(progress))
			summary, err := manager.Run(runCtx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nBatch finished in %s: %d completed, %d failed of %d\n",
				summary.Duration.Round(time.Second), summary.Completed, summary.Failed, summary.Total)
			if summary.Failed > 0 {
				fmt.Fprintf(out, "Failures are listed in %s\n", filepath.Join(cfg.Paths.LogDir, "error_log.txt"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before processing")
	return cmd
}
