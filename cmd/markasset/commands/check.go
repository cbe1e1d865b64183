package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/markasset/markasset/internal/config"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/session"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <code>",
	Short: "Check the status of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	code := args[0]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sessions := newSessionManager(cfg, httpClient)

	status, err := sessions.CheckStatus(ctx, code)
	if err != nil {
		return errors.Wrap(err, "status check failed")
	}

	switch status.State {
	case session.StateNotFound:
		fmt.Printf("Session %s not found\n", code)
	case session.StateExpired:
		fmt.Printf("Session %s has expired\n", code)
	case session.StateWaiting:
		fmt.Printf("Session %s is waiting for files\n", code)
	case session.StateHasFiles:
		fmt.Printf("Session %s has %d files: %s\n", code, len(status.Files), strings.Join(status.Files, ", "))
	}

	return nil
}
