package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/output"
	"github.com/sdejongh/filescout/pkg/search"
	"github.com/sdejongh/filescout/pkg/storage"
)

// sessionResult is what a finished session leaves for the command
type sessionResult struct {
	report  *models.SearchReport
	results []models.Result
}

// runSession runs one search session to completion while rendering its
// status updates. An interrupt stops the session; the results found so far
// are still printed.
func runSession(cmd *cobra.Command, cfg *config.Config, ecfg *search.EngineConfig) (*sessionResult, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := output.New(cfg.Output.Format, cfg.Output.Progress)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	backend := storage.NewLocal()
	defer backend.Close()

	engine := search.NewEngine(backend, logger)
	session, err := engine.NewSession(ecfg)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	info := output.StartInfo{
		SessionID: session.ID(),
		Mode:      ecfg.Mode,
		Criteria:  ecfg.Criteria.Describe(),
		Results:   session.Results(),
	}
	for _, r := range ecfg.Roots {
		info.Roots = append(info.Roots, r.Path)
	}
	if err := formatter.Start(out, info); err != nil {
		return nil, err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		for u := range session.Updates() {
			if err := formatter.Progress(u); err != nil {
				session.Stop()
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-sigCh:
			session.Stop()
		case <-done:
		}
		return nil
	})

	report := session.Wait()
	close(done)
	renderErr := g.Wait()

	res := &sessionResult{report: report, results: session.Results().Snapshot()}
	if err := formatter.Complete(report, res.results); err != nil {
		return res, err
	}
	return res, renderErr
}

// exitStatus converts a finished session into the command's error
func exitStatus(report *models.SearchReport) error {
	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
