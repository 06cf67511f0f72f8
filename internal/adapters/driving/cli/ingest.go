package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

var (
	ingestName string
	ingestLLM  string
	ingestPDF  string
	ingestURL  string
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Create a model from a PDF or a web page",
	Long: `Extracts the text of one PDF file or web page, embeds it into a new vector
index and registers it as a named model. The model's API key is printed once.

Examples:
  ragkit ingest --name handbook --pdf ./handbook.pdf
  ragkit ingest --name docs --url https://example.com/guide --llm claude`,
	Annotations: appAnnotation,
	Args:        cobra.NoArgs,
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "unique model name")
	ingestCmd.Flags().StringVar(&ingestLLM, "llm", domain.DefaultBackendTag, "completion backend tag")
	ingestCmd.Flags().StringVar(&ingestPDF, "pdf", "", "PDF file to ingest")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "web page to ingest")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	_ = ingestCmd.MarkFlagRequired("name")
	ingestCmd.MarkFlagsOneRequired("pdf", "url")
	ingestCmd.MarkFlagsMutuallyExclusive("pdf", "url")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := requireApp("ingestion", ingestionService); err != nil {
		return err
	}

	req, err := buildIngestRequest()
	if err != nil {
		return err
	}

	var observe driving.IngestObserver
	var bar *progressbar.ProgressBar
	if !ingestJSON {
		bar = newIngestBar(cmd.ErrOrStderr())
		observe = func(state domain.IngestState) {
			bar.Describe(state.String())
			if state != domain.StateFailed {
				_ = bar.Add(1)
			}
		}
	}

	result, err := ingestionService.Ingest(cmd.Context(), req, observe)
	if bar != nil {
		_ = bar.Exit()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", exitHint(err))
	}

	if ingestJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(keyBanner(result.ModelName, result.APIKey))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("index %s, %d chunk(s)", result.IndexName, result.Chunks)))
	if result.Truncated {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Text was truncated to %d characters.", domain.MaxChunkChars)))
	}
	return nil
}

func buildIngestRequest() (domain.IngestRequest, error) {
	req := domain.IngestRequest{
		ModelName: ingestName,
		LLMModel:  ingestLLM,
	}

	if ingestURL != "" {
		req.Type = domain.IngestionURL
		req.URL = ingestURL
		return req, nil
	}

	data, err := os.ReadFile(ingestPDF)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return req, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, ingestPDF)
		}
		return req, fmt.Errorf("read %s: %w", ingestPDF, err)
	}

	req.Type = domain.IngestionPDF
	req.File = data
	req.FileName = filepath.Base(ingestPDF)
	req.ContentType = detectContentType(req.FileName, data)
	return req, nil
}

// detectContentType sniffs the file, trusting a .pdf extension when sniffing is inconclusive.
func detectContentType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "application/pdf") {
		return "application/pdf"
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") && sniffed == "application/octet-stream" {
		return "application/pdf"
	}
	return sniffed
}

// ingestSteps is the number of states a successful ingestion passes through.
const ingestSteps = int(domain.StateDone-domain.StateValidating) + 1

func newIngestBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(ingestSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
