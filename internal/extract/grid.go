package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Aman-CERP/wordex/internal/dictionary"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/ui"
)

// GridOptions configures WriteGrid.
type GridOptions struct {
	// Words, when set, receives every extracted word so the build can
	// skip its own dictionary scan.
	Words *dictionary.WordList

	Renderer ui.Renderer
}

// GridSummary describes a written grid.
type GridSummary struct {
	Documents int
	Pages     int64
	Words     int64
	Duration  time.Duration
}

// WriteGrid extracts paths and writes the page stream to files.Grid().
// Page counts are taken in a first pass so the header can be written
// before the pages. The grid is written to a temporary file and renamed
// into place.
func (e *Extractor) WriteGrid(ctx context.Context, files indexer.Files, paths []string, opts GridOptions) (*GridSummary, error) {
	start := time.Now()
	counts, err := e.CountPages(ctx, paths)
	if err != nil {
		return nil, err
	}
	header := indexer.GridHeader{PageCounts: counts, Paths: paths}
	summary := &GridSummary{Documents: len(paths), Pages: header.TotalPages()}

	if err := os.MkdirAll(files.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	tmp := files.Grid() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}()

	gw, err := indexer.NewGridWriter(f, header)
	if err != nil {
		return nil, err
	}

	err = e.Extract(ctx, paths, func(doc Document) error {
		if int32(len(doc.Pages)) != counts[doc.Index] {
			return fmt.Errorf("%s changed during extraction: %d pages, expected %d", doc.Path, len(doc.Pages), counts[doc.Index])
		}
		for i, words := range doc.Pages {
			if err := gw.WritePage(int32(doc.Index+1), int32(i+1), words); err != nil {
				return err
			}
			summary.Words += int64(len(words))
			if opts.Words != nil {
				opts.Words.ApplyAll(words)
			}
		}
		if opts.Renderer != nil {
			opts.Renderer.UpdateProgress(ui.ProgressEvent{
				Stage:       ui.StageExtract,
				Current:     doc.Index + 1,
				Total:       len(paths),
				CurrentFile: doc.Path,
			})
		}
		slog.Debug("document_extracted", slog.String("path", doc.Path), slog.Int("pages", len(doc.Pages)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, files.Grid()); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	slog.Info("grid_written",
		slog.String("name", files.Name),
		slog.Int("documents", summary.Documents),
		slog.Int64("pages", summary.Pages),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}
