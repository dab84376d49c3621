package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/searchgw/internal/logger"
	catalogsvc "github.com/kailas-cloud/searchgw/internal/usecase/catalog"
)

var documentsFile string

// setupCmd performs the same work as POST /setup without starting the server.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the index and ingest the documents file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Setup.DocumentsPath
		if documentsFile != "" {
			path = documentsFile
		}

		ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
		ctx = logpkg.With(ctx, zap.String("command", "setup"), zap.String("path", path))
		e, err := openEngine(cfg.Engine, logger)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := awaitEngine(ctx, e, cfg.Engine, logger); err != nil {
			return fmt.Errorf("search engine not ready: %w", err)
		}

		res, err := catalogsvc.New(e).SetupIndex(ctx, path)
		if err != nil {
			return fmt.Errorf("index setup: %w", err)
		}
		logger.Info("Index setup done", zap.String("path", path))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	setupCmd.Flags().StringVarP(&documentsFile, "file", "f", "", "JSON array of documents (default: setup.documents_path)")
	rootCmd.AddCommand(setupCmd)
}
