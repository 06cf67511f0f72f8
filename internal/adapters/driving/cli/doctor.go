package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and provider connectivity",
	Long: `Validates the configuration, then pings the embedding provider, every
configured completion backend and the vector index.`,
	Annotations: appAnnotation,
	Args:        cobra.NoArgs,
	RunE:        runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || checkProviders == nil {
		return errors.New("services not configured")
	}

	failed := 0
	if err := settingsService.Validate(); err != nil {
		failed++
		cmd.Printf("%-24s %s\n", "configuration", checkMark(false))
		cmd.Printf("  %s\n", err)
	} else {
		cmd.Printf("%-24s %s\n", "configuration", checkMark(true))
	}

	for _, check := range checkProviders(cmd.Context()) {
		cmd.Printf("%-24s %s  %s\n", check.Name, checkMark(check.OK()), mutedStyle.Render(check.Model))
		if !check.OK() {
			failed++
			cmd.Printf("  %s\n", check.Err)
		}
	}

	if failed > 0 {
		return errors.New("some checks failed")
	}
	cmd.Println(successStyle.Render("All checks passed."))
	return nil
}
