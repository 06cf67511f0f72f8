package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var (
	modelsJSON bool
	deleteYes  bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage registered models",
	Long:  `List, inspect and delete the models created by ingest.`,
}

var modelsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List registered models",
	Annotations: appAnnotation,
	Args:        cobra.NoArgs,
	RunE:        runModelsList,
}

var modelsShowCmd = &cobra.Command{
	Use:         "show [name]",
	Short:       "Show one model",
	Annotations: appAnnotation,
	Args:        cobra.ExactArgs(1),
	RunE:        runModelsShow,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a model and its vector index",
	Long: `Deletes the model's vector index first and its registry record second.
If the index cannot be deleted the model stays registered and the delete can be retried.`,
	Annotations: appAnnotation,
	Args:        cobra.ExactArgs(1),
	RunE:        runModelsDelete,
}

func init() {
	modelsListCmd.Flags().BoolVar(&modelsJSON, "json", false, "output models as JSON")
	modelsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	if err := requireApp("model", modelService); err != nil {
		return err
	}

	models, err := modelService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if modelsJSON {
		return printJSON(cmd, modelViews(models))
	}

	if len(models) == 0 {
		cmd.Println("No models registered. Create one with 'ragkit ingest'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBACKEND\tINDEX\tCREATED")
	for _, m := range models {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.LLMModel, m.IndexName, formatCreated(m))
	}
	return w.Flush()
}

func runModelsShow(cmd *cobra.Command, args []string) error {
	if err := requireApp("model", modelService); err != nil {
		return err
	}

	model, err := modelService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get model: %w", err)
	}

	cmd.Printf("Name:    %s\n", model.Name)
	cmd.Printf("Backend: %s\n", model.LLMModel)
	cmd.Printf("Index:   %s\n", model.IndexName)
	cmd.Printf("Created: %s\n", formatCreated(*model))
	return nil
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	if err := requireApp("model", modelService); err != nil {
		return err
	}
	name := args[0]

	if !deleteYes {
		cmd.Printf("Delete model %q and its index? [y/N]: ", name)
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	deleted, err := modelService.Delete(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	cmd.Printf("Model %q deleted (index %s).\n", deleted.Name, deleted.IndexName)
	return nil
}

type modelView struct {
	Name      string `json:"name"`
	LLMModel  string `json:"llmModel"`
	IndexName string `json:"indexName"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func modelViews(models []domain.Model) []modelView {
	views := make([]modelView, len(models))
	for i, m := range models {
		views[i] = modelView{Name: m.Name, LLMModel: m.LLMModel, IndexName: m.IndexName, CreatedAt: formatCreated(m)}
	}
	return views
}

func formatCreated(m domain.Model) string {
	if m.CreatedAt.IsZero() {
		return ""
	}
	return m.CreatedAt.Local().Format("2006-01-02 15:04")
}
