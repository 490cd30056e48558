package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "List the monthly buckets",
		Long:  "List every monthly bucket with its memory count and whether a recap exists.",
		Run:   runMonths,
	}
	RootCmd.AddCommand(cmd)

	show := &cobra.Command{
		Use:   "show <year> <month>",
		Short: "Print one month as JSON",
		Args:  cobra.ExactArgs(2),
		Run:   runShow,
	}
	RootCmd.AddCommand(show)
}

func runMonths(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	for _, m := range a.journal.Snapshot().Months {
		recapMark := " "
		if m.Analysis != nil && m.Analysis.Story != "" {
			recapMark = "*"
		}
		fmt.Printf("%s %-12s %d  %3d memories\n", recapMark, m.DisplayName, m.Year, len(m.Memories))
	}
}

// parseMonthArgs reads <year> <month> positionals.
func parseMonthArgs(args []string) (id, year int) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		exitErr("parse year", err)
	}
	id, err = strconv.Atoi(args[1])
	if err != nil {
		exitErr("parse month", err)
	}
	return id, year
}

func runShow(cmd *cobra.Command, args []string) {
	id, year := parseMonthArgs(args)

	a := openApp(cmd.Context())
	defer a.close()

	m, err := a.journal.Month(id, year)
	if err != nil {
		exitErr("show", err)
	}
	printJSON(m)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
