package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/lehigh-university-libraries/tryon/internal/history"
	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/images"
	"github.com/lehigh-university-libraries/tryon/internal/storage"
)

// openHistory opens the SQLite-backed history. The returned func closes the
// database.
func openHistory(ctx context.Context, dbPath string) (*history.Store, func(), error) {
	kv, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return history.Open(ctx, kv), func() { _ = kv.Close() }, nil
}

// loadImage reads ref as a local file, or fetches it when it is a URL.
func loadImage(ctx context.Context, fetcher *images.Fetcher, ref string) (imagedata.Image, error) {
	img := imagedata.Image(ref)
	if img.IsEmbedded() || img.IsRemote() {
		return fetcher.ToDataURL(ctx, img)
	}

	f, err := os.Open(ref)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}

	return imagedata.ReadUpload(f, info.Size(), mime.TypeByExtension(filepath.Ext(ref)))
}

// writeImage decodes img and writes the raw bytes to path.
func writeImage(path string, img imagedata.Image) error {
	blob, err := imagedata.Decode(img)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func printDone(format string, args ...any) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}
