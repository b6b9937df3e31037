/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/service"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a file and optionally ask, summarize and translate",
	Long: `Ingests a single PDF, DOCX or TXT file into the configured vector store.

With --question the file is queried right after ingest. With --summarize the
whole file is summarized. --translate also prints the answer and summary in
the configured target language.`,
	Example: `  docqa-be upload-document -f essay.txt -q "Which country is the most powerful?" --summarize --translate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		question, _ := cmd.Flags().GetString("question")
		k, _ := cmd.Flags().GetInt("k")
		summarize, _ := cmd.Flags().GetBool("summarize")
		translate, _ := cmd.Flags().GetBool("translate")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if filePath == "" {
			return errors.New("--file is required")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, appOptions{reinit: reinit})
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		out := cmd.OutOrStdout()
		result, err := a.rag.Ingest(ctx, filePath)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", filePath, err)
		}
		fmt.Fprintf(out, "Stored %d chunks (%d words) from %s\n", result.ChunksCreated, result.TextLength, filePath)

		if question != "" {
			answer, err := a.rag.Ask(ctx, question, k)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nQuestion: %s\nAnswer: %s\n", question, answer)
			if translate {
				if err := printTranslation(ctx, a.rag, out, answer); err != nil {
					return err
				}
			}
		}

		if summarize {
			summary, err := a.rag.Summarize(ctx, filePath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSummary of the given document is:\n%s\n", summary)
			if translate {
				if err := printTranslation(ctx, a.rag, out, summary); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func printTranslation(ctx context.Context, rag *service.RAGService, out io.Writer, text string) error {
	translation, err := rag.Translate(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", translation)
	return nil
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the file to upload")
	uploadDocumentCmd.Flags().StringP("question", "q", "", "Question to ask after ingest")
	uploadDocumentCmd.Flags().IntP("k", "k", service.DefaultTopK, "Number of chunks to retrieve for the question")
	uploadDocumentCmd.Flags().Bool("summarize", false, "Summarize the file")
	uploadDocumentCmd.Flags().Bool("translate", false, "Translate the answer and summary")
	uploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the Weaviate class first")
}
