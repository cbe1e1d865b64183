package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "markasset",
	Short: "MarkAsset - pull mobile uploads into your workspace by code",
	Long:  `Mints short session codes, watches the remote session for uploads from the companion mobile app, and downloads them into the local workspace.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("project-id", "markasset-project", "Firebase project ID")
	rootCmd.PersistentFlags().String("user-id", "anonymous", "User ID owning the session tree")
	rootCmd.PersistentFlags().String("workspace-dir", ".", "Directory downloaded files are written to")
	rootCmd.PersistentFlags().String("sqlite-path", ".markasset/history.db", "Retrieval history database path")
	rootCmd.PersistentFlags().String("fsm-db-path", ".markasset/fsm", "FSM journal path")
	rootCmd.PersistentFlags().String("storage-backend", "firebase", "Blob store backend (firebase or s3)")
	rootCmd.PersistentFlags().String("s3-bucket", "markasset-uploads", "S3 bucket name (s3 backend)")
	rootCmd.PersistentFlags().String("s3-region", "us-east-1", "S3 region (s3 backend)")
	rootCmd.PersistentFlags().Duration("poll-interval", 3*time.Second, "Delay between session status checks")
	rootCmd.PersistentFlags().Duration("max-poll-duration", time.Hour, "Wall-clock ceiling on one polling run")

	viper.BindPFlag("project-id", rootCmd.PersistentFlags().Lookup("project-id"))
	viper.BindPFlag("user-id", rootCmd.PersistentFlags().Lookup("user-id"))
	viper.BindPFlag("workspace-dir", rootCmd.PersistentFlags().Lookup("workspace-dir"))
	viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	viper.BindPFlag("fsm-db-path", rootCmd.PersistentFlags().Lookup("fsm-db-path"))
	viper.BindPFlag("storage-backend", rootCmd.PersistentFlags().Lookup("storage-backend"))
	viper.BindPFlag("s3-bucket", rootCmd.PersistentFlags().Lookup("s3-bucket"))
	viper.BindPFlag("s3-region", rootCmd.PersistentFlags().Lookup("s3-region"))
	viper.BindPFlag("poll-interval", rootCmd.PersistentFlags().Lookup("poll-interval"))
	viper.BindPFlag("max-poll-duration", rootCmd.PersistentFlags().Lookup("max-poll-duration"))
}
