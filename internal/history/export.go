package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/models"
	"github.com/parquet-go/parquet-go"
)

// exportRow is the parquet layout of a history entry
type exportRow struct {
	ID         string `parquet:"id"`
	Timestamp  int64  `parquet:"timestamp"`
	ImageURL   string `parquet:"image_url"`
	PersonURL  string `parquet:"person_url"`
	ClothesURL string `parquet:"clothes_url"`
}

// ExportFile writes entries to path, choosing the format from the extension
func ExportFile(path string, entries []models.HistoryEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		err = WriteParquet(file, entries)
	case ".jsonl", ".json":
		err = WriteJSONL(file, entries)
	default:
		err = fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	return err
}

// WriteParquet writes entries as parquet rows
func WriteParquet(w io.Writer, entries []models.HistoryEntry) error {
	rows := make([]exportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, exportRow{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			ImageURL:   e.ImageURL,
			PersonURL:  e.PersonURL,
			ClothesURL: e.ClothesURL,
		})
	}

	if err := parquet.Write(w, rows); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// ReadParquet reads entries previously written by WriteParquet
func ReadParquet(r io.ReaderAt, size int64) ([]models.HistoryEntry, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[exportRow](pf)
	defer reader.Close()

	var entries []models.HistoryEntry
	rows := make([]exportRow, 16)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			entries = append(entries, models.HistoryEntry{
				ID:         row.ID,
				Timestamp:  row.Timestamp,
				ImageURL:   row.ImageURL,
				PersonURL:  row.PersonURL,
				ClothesURL: row.ClothesURL,
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return entries, nil
}

// WriteJSONL writes one JSON entry per line
func WriteJSONL(w io.Writer, entries []models.HistoryEntry) error {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", e.ID, err)
		}
	}
	return buf.Flush()
}
