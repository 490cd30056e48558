package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// magickConvert shells out to ImageMagick to turn HEIC/HEIF bytes into
// JPEG. Tries the v7 `magick` binary first, then legacy `convert`.
func magickConvert(ctx context.Context, data []byte, quality int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "recap-heic-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.heic")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp: %w", err)
	}

	q := fmt.Sprintf("%d", quality)
	for _, bin := range [][]string{
		{"magick", in, "-quality", q, "jpg:-"},
		{"convert", in, "-quality", q, "jpg:-"},
	} {
		if _, err := exec.LookPath(bin[0]); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, bin[0], bin[1:]...)
		var out, stderr bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%s: %v: %s", bin[0], err, stderr.String())
		}
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("no HEIC converter available (install ImageMagick)")
}
