package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/ingest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <year> <month> <file>...",
		Short: "Add media files to a month",
		Long:  "Add photos and videos to a monthly bucket. Images are re-encoded to bounded JPEG, HEIC is converted via ImageMagick, videos are stored as-is.",
		Args:  cobra.MinimumNArgs(3),
		Run:   runIngest,
	}
	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	id, year := parseMonthArgs(args)

	a := openApp(cmd.Context())
	defer a.close()

	var files []ingest.File
	for _, path := range args[2:] {
		data, err := os.ReadFile(path)
		if err != nil {
			exitErr("read file", err)
		}
		files = append(files, ingest.File{
			Name: filepath.Base(path),
			MIME: mime.TypeByExtension(filepath.Ext(path)),
			Data: data,
		})
	}

	p := ingest.New(a.store, a.journal, cliLogger(),
		ingest.WithLimits(a.cfg.ImageMaxDim, a.cfg.JPEGQuality, a.cfg.HEICQuality))

	mems, err := p.Ingest(cmd.Context(), files, id, year, func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rprocessing %d/%d", done, total)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		exitErr("ingest", err)
	}

	fmt.Printf("ingested %d of %d file(s)\n", len(mems), len(files))
	for _, m := range mems {
		fmt.Printf("  %s  %-5s  %s\n", m.ID, m.Type, m.Caption)
	}
}
