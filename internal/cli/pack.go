package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/pack"
)

func init() {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the whole archive as a zip bundle",
		Long:  "Write a portable zip bundle holding the journal snapshot and every stored media blob.",
		Run:   runExport,
	}
	export.Flags().StringP("out", "o", "", "Output path (default: recap-archive-<date>.zip)")
	RootCmd.AddCommand(export)

	imp := &cobra.Command{
		Use:   "import <bundle.zip>",
		Short: "Restore an archive from an exported bundle",
		Long:  "Restore the journal snapshot and media blobs from a previously exported bundle. Existing entries with the same keys are overwritten.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}
	RootCmd.AddCommand(imp)

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the archive back to an empty calendar",
		Run:   runReset,
	}
	reset.Flags().Bool("yes", false, "Confirm the wipe")
	RootCmd.AddCommand(reset)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("recap-archive-%s.zip", time.Now().Format("2006-01-02"))
	}

	a := openApp(cmd.Context())
	defer a.close()

	f, err := os.Create(out)
	if err != nil {
		exitErr("create bundle", err)
	}
	defer f.Close()

	if err := pack.Export(cmd.Context(), a.store, f); err != nil {
		exitErr("export", err)
	}
	fmt.Printf("wrote %s\n", out)
}

func runImport(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.close()

	f, err := os.Open(args[0])
	if err != nil {
		exitErr("open bundle", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		exitErr("stat bundle", err)
	}
	if err := pack.Import(cmd.Context(), a.store, f, info.Size()); err != nil {
		exitErr("import", err)
	}
	if err := a.journal.Load(cmd.Context()); err != nil {
		exitErr("reload journal", err)
	}
	fmt.Printf("restored from %s\n", args[0])
}

func runReset(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("reset", fmt.Errorf("pass --yes to wipe the archive"))
	}

	a := openApp(cmd.Context())
	defer a.close()

	keys, err := a.store.BlobKeys(cmd.Context())
	if err != nil {
		exitErr("reset", err)
	}
	for _, k := range keys {
		if err := a.store.DeleteBlob(cmd.Context(), k); err != nil {
			fmt.Fprintf(os.Stderr, "warning: delete blob %s: %v\n", k, err)
		}
	}
	a.journal.Reset()
	fmt.Println("archive reset")
}
