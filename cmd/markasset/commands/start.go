package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/markasset/markasset/internal/config"
	"github.com/markasset/markasset/pkg/client"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/history"
	"github.com/markasset/markasset/pkg/poller"
	"github.com/markasset/markasset/pkg/session"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Mint a session code and poll for uploaded files",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}

	if err := ensureDirectories(cfg.SQLitePath, "", cfg.WorkspaceDir); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sessions := newSessionManager(cfg, httpClient)

	fetcher, err := newFetcher(ctx, cfg, httpClient)
	if err != nil {
		return errors.Wrap(err, "blob fetcher failed")
	}

	hist, err := history.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "history db init failed")
	}
	defer hist.Close()

	p := poller.New(sessions, fetcher, hist, cfg.PollInterval, cfg.MaxPollDuration, cfg.MaxConsecutiveErrors)
	app := client.New(sessions, fetcher, p)

	code, done, err := app.StartSession(ctx, cfg.WorkspaceDir)
	if err != nil {
		if errors.Is(err, session.ErrCodeCollision) {
			return fmt.Errorf("%w (run start again to mint a new code)", err)
		}
		return errors.Wrap(err, "start session failed")
	}

	fmt.Printf("Session code: %s\n", code)
	fmt.Println("Upload your files using the mobile app with this code.")
	fmt.Printf("Watching for uploads (every %s, up to %s)...\n", cfg.PollInterval, cfg.MaxPollDuration)

	// The polling run is detached; the command keeps the process alive
	// until it reports a terminal outcome.
	result := <-done

	switch result.Outcome {
	case poller.OutcomeSucceeded:
		fmt.Printf("Downloaded %d files:\n", len(result.Downloaded))
		for _, path := range result.Downloaded {
			fmt.Printf("  %s\n", path)
		}
		return nil
	case poller.OutcomeExpired:
		return fmt.Errorf("session %s has expired", code)
	case poller.OutcomeNotFound:
		return fmt.Errorf("session %s not found", code)
	case poller.OutcomeErrorBudgetExhausted:
		return fmt.Errorf("too many errors, stopped polling for session %s", code)
	case poller.OutcomeTimedOut:
		return fmt.Errorf("gave up waiting for uploads to session %s", code)
	default:
		return fmt.Errorf("polling for session %s was canceled", code)
	}
}
