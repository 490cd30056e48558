// Package ingest turns user-selected files into stored memories:
// classification, format conversion, downsampling, blob persistence.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/journal"
	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
)

// Defaults mirror the gallery's display constraints: screens never need
// more than ~1200px, and q80 JPEG keeps stored size bounded.
const (
	DefaultMaxDim      = 1200
	DefaultJPEGQuality = 80
	DefaultHEICQuality = 70
)

var videoExts = []string{".mp4", ".mov", ".hevc", ".qt"}

// File is one user-selected input.
type File struct {
	Name string // original file name, used for classification and caption
	MIME string // declared media type, may be empty
	Data []byte
}

// Progress reports (files processed so far, total) as the batch runs.
type Progress func(processed, total int)

// Converter turns a non-web-native image (HEIC/HEIF) into JPEG bytes at
// the given quality. Injectable so tests need no external tooling.
type Converter func(ctx context.Context, data []byte, quality int) ([]byte, error)

// Pipeline ingests file batches into a target month. Concurrent
// batches against the same journal are not supported; callers keep a
// single active upload at a time.
type Pipeline struct {
	store   store.ObjectStore
	journal *journal.Journal
	log     zerolog.Logger

	maxDim      uint
	jpegQuality int
	heicQuality int
	convert     Converter
	entropy     *ulid.MonotonicEntropy
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConverter replaces the external HEIC converter.
func WithConverter(c Converter) Option {
	return func(p *Pipeline) { p.convert = c }
}

// WithLimits overrides the image re-encode parameters.
func WithLimits(maxDim uint, jpegQuality, heicQuality int) Option {
	return func(p *Pipeline) {
		p.maxDim = maxDim
		p.jpegQuality = jpegQuality
		p.heicQuality = heicQuality
	}
}

// New creates a Pipeline writing blobs to st and metadata through j.
func New(st store.ObjectStore, j *journal.Journal, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       st,
		journal:     j,
		log:         log,
		maxDim:      DefaultMaxDim,
		jpegQuality: DefaultJPEGQuality,
		heicQuality: DefaultHEICQuality,
		convert:     magickConvert,
		entropy:     ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest processes files strictly in input order and prepends the
// resulting memories to the (monthID, year) bucket. A bad file is
// logged and skipped; it never aborts the rest of the batch.
func (p *Pipeline) Ingest(ctx context.Context, files []File, monthID, year int, progress Progress) ([]model.Memory, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var processed []model.Memory
	for i, f := range files {
		if progress != nil {
			progress(i+1, len(files))
		}

		mem, err := p.one(ctx, f)
		if err != nil {
			p.log.Warn().Err(err).Str("file", f.Name).Msg("skipping file")
			continue
		}
		processed = append(processed, mem)
	}

	if err := p.journal.AddMemories(monthID, year, processed); err != nil {
		return nil, err
	}
	return processed, nil
}

func (p *Pipeline) one(ctx context.Context, f File) (model.Memory, error) {
	kind := Classify(f.Name, f.MIME)

	data := f.Data
	if kind == model.KindImage {
		var err error
		if isHEIC(f.Name) {
			data, err = p.convert(ctx, data, p.heicQuality)
			if err != nil {
				return model.Memory{}, fmt.Errorf("convert %s: %w", f.Name, err)
			}
		}
		data, err = p.reencode(data)
		if err != nil {
			return model.Memory{}, fmt.Errorf("reencode %s: %w", f.Name, err)
		}
	}
	// Videos are stored verbatim, no transcoding.

	id := p.newID()
	if err := p.store.PutBlob(ctx, id, data); err != nil {
		return model.Memory{}, fmt.Errorf("store %s: %w", f.Name, err)
	}

	return model.Memory{
		ID:      id,
		Type:    kind,
		Caption: captionFor(f.Name),
		Tags:    []string{kind},
		URL:     "/api/media/" + id, // session-scoped display reference
	}, nil
}

// reencode decodes, caps the longer dimension at maxDim preserving
// aspect ratio, and re-encodes as JPEG.
func (p *Pipeline) reencode(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if w, h := uint(b.Dx()), uint(b.Dy()); w > p.maxDim || h > p.maxDim {
		if w >= h {
			img = resize.Resize(p.maxDim, 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, p.maxDim, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Pipeline) newID() string {
	return "mem-" + ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String()
}

// Classify decides image vs video from the declared media type and the
// file name. Anything not recognizably video is treated as an image.
func Classify(name, mime string) string {
	if strings.Contains(strings.ToLower(mime), "video") {
		return model.KindVideo
	}
	lower := strings.ToLower(name)
	for _, ext := range videoExts {
		if strings.HasSuffix(lower, ext) {
			return model.KindVideo
		}
	}
	return model.KindImage
}

func isHEIC(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".heic") || strings.HasSuffix(lower, ".heif")
}

// captionFor strips the directory and everything after the first dot.
func captionFor(name string) string {
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}
