package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bgm",
		Short: "Manage the custom background music track",
	}

	set := &cobra.Command{
		Use:   "set <audio-file>",
		Short: "Store a custom background track",
		Args:  cobra.ExactArgs(1),
		Run:   runBGMSet,
	}
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove the custom track and fall back to the default",
		Run:   runBGMClear,
	}

	cmd.AddCommand(set, clear)
	RootCmd.AddCommand(cmd)
}

func runBGMSet(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read audio", err)
	}
	if err := a.store.PutBlob(cmd.Context(), model.BGMBlobKey, data); err != nil {
		exitErr("store audio", err)
	}
	fmt.Printf("stored %s (%d bytes)\n", args[0], len(data))
}

func runBGMClear(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	if err := a.store.DeleteBlob(cmd.Context(), model.BGMBlobKey); err != nil {
		exitErr("clear audio", err)
	}
	fmt.Println("custom track cleared")
}
