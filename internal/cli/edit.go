package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	caption := &cobra.Command{
		Use:   "caption <memory-id> <caption>",
		Short: "Rename a memory's caption",
		Args:  cobra.MinimumNArgs(2),
		Run:   runCaption,
	}
	RootCmd.AddCommand(caption)

	rm := &cobra.Command{
		Use:   "rm <memory-id>",
		Short: "Delete a memory and its stored media",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}
	RootCmd.AddCommand(rm)

	reorder := &cobra.Command{
		Use:   "reorder <year> <month> <memory-id> <position>",
		Short: "Move a memory to a new position in its month",
		Long:  "Move a memory within its monthly bucket. Position is zero-based and clamps to the end if the list shrank since you looked.",
		Args:  cobra.ExactArgs(4),
		Run:   runReorder,
	}
	RootCmd.AddCommand(reorder)
}

func runCaption(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	caption := strings.Join(args[1:], " ")
	if err := a.journal.UpdateCaption(args[0], caption); err != nil {
		exitErr("caption", err)
	}
	fmt.Printf("updated %s\n", args[0])
}

func runRm(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	if err := a.journal.DeleteMemory(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Printf("deleted %s\n", args[0])
}

func runReorder(cmd *cobra.Command, args []string) {
	id, year := parseMonthArgs(args)
	pos, err := strconv.Atoi(args[3])
	if err != nil {
		exitErr("parse position", err)
	}

	a := openApp(cmd.Context())
	defer a.close()

	if err := a.journal.ReorderByID(id, year, args[2], pos); err != nil {
		exitErr("reorder", err)
	}
	fmt.Printf("moved %s to position %d\n", args[2], pos)
}
