package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/markasset/markasset/internal/config"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/history"
	"github.com/markasset/markasset/pkg/workflow"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <code>",
	Short: "Download a session's files once, without polling",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	code := args[0]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}

	if err := ensureDirectories(cfg.SQLitePath, cfg.FSMDBPath, cfg.WorkspaceDir); err != nil {
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

	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	machine := workflow.NewMachine(sessions, fetcher, hist, cfg.FSMMaxRetries)
	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	req := &workflow.RetrievalRequest{
		Code:        code,
		Destination: cfg.WorkspaceDir,
	}
	resp := &workflow.RetrievalResponse{}

	version, err := start(ctx, code, fsm.NewRequest(req, resp))
	if err != nil {
		return errors.Wrap(err, "FSM start failed")
	}

	if err := manager.Wait(ctx, version); err != nil {
		return errors.Wrap(err, "retrieval failed")
	}

	fmt.Printf("Downloaded %d files:\n", len(resp.Downloaded))
	for _, path := range resp.Downloaded {
		fmt.Printf("  %s\n", path)
	}

	return nil
}
