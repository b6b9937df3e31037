/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/types"
	"go.uber.org/zap"
)

// batchUploadDocumentCmd represents the batch-upload-document command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Ingest every supported file in a directory",
	Long: `Ingests every PDF, DOCX and TXT file in a directory (not recursive).
Files in other formats are skipped. Useful with a persistent vector store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		directory, _ := cmd.Flags().GetString("directory")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if directory == "" {
			return errors.New("--directory is required")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		files, err := os.ReadDir(directory)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
		}

		a, err := newApp(ctx, appOptions{reinit: reinit})
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		var stored, failed int
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			result, err := a.rag.Ingest(ctx, filePath)
			switch {
			case errors.Is(err, types.ErrUnsupportedFormat):
				a.logger.Debug("skipping unsupported file", zap.String("file", filePath))
			case err != nil:
				failed++
				a.logger.Error("failed to upload document", zap.String("file", filePath), zap.Error(err))
			default:
				stored++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", filePath, result.ChunksCreated)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d files, %d failed\n", stored, failed)
		if failed > 0 {
			return fmt.Errorf("%d files failed to upload", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().String("directory", "", "Path to the dir to upload")
	batchUploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the Weaviate class first")
}
