package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/recap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recap <year> <month>",
		Short: "Generate a narrative summary for a month",
		Long:  "Ask the summary service for a short narrative of the month's memories. Without RECAP_GEMINI_API_KEY a canned summary is stored instead.",
		Args:  cobra.ExactArgs(2),
		Run:   runRecap,
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing summary")
	RootCmd.AddCommand(cmd)
}

func runRecap(cmd *cobra.Command, args []string) {
	id, year := parseMonthArgs(args)
	force, _ := cmd.Flags().GetBool("force")

	a := openApp(cmd.Context())
	defer a.close()

	m, err := a.journal.Month(id, year)
	if err != nil {
		exitErr("recap", err)
	}
	if m.Analysis != nil && m.Analysis.Story != "" && !force {
		exitErr("recap", errors.New("summary exists, pass --force to overwrite"))
	}

	client := recap.New(a.cfg.GeminiAPIKey, a.cfg.GeminiBaseURL, a.cfg.GeminiModel, cliLogger())
	analysis, err := client.Summarize(cmd.Context(), m.Name, m.Memories)
	if err != nil {
		exitErr("summarize", err)
	}
	if err := a.journal.SetAnalysis(id, year, &analysis); err != nil {
		exitErr("save summary", err)
	}
	printJSON(analysis)
}
