package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// APIKeyEnv supplies a model API key when --api-key is omitted.
const APIKeyEnv = "RAGKIT_API_KEY"

var (
	queryAPIKey string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [model] [message]",
	Short: "Ask a model a question",
	Long: `Retrieves the chunks of the model's document closest to the question and
asks the model's completion backend to answer from them.

The API key is taken from --api-key, then $RAGKIT_API_KEY, and is otherwise
prompted for without echo.`,
	Annotations: appAnnotation,
	Args:        cobra.ExactArgs(2),
	RunE:        runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryAPIKey, "api-key", "k", "", "the model's API key")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer and sources as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := requireApp("query", queryService); err != nil {
		return err
	}

	key := queryAPIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	if key == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
		key = readSecret(cmd.InOrStdin())
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	result, err := queryService.Query(cmd.Context(), domain.QueryRequest{
		ModelName: args[0],
		APIKey:    key,
		Message:   args[1],
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", exitHint(err))
	}

	if queryJSON {
		return printJSON(cmd, result)
	}
	return outputAnswer(cmd, result)
}

func outputAnswer(cmd *cobra.Command, result *domain.QueryResult) error {
	cmd.Println(result.Answer)
	if len(result.SourceDocuments) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println(titleStyle.Render("Sources:"))
	for i, doc := range result.SourceDocuments {
		source := domain.MetadataString(doc.Metadata, "source")
		if source == "" {
			source = "(unknown)"
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, source, doc.Score)
		if snippet := snippetOf(doc.PageContent, 120); snippet != "" {
			cmd.Printf("      %s\n", mutedStyle.Render(snippet))
		}
	}
	return nil
}

// snippetOf returns the first limit runes of text on one line.
func snippetOf(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(bufio.NewReader(in))
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
