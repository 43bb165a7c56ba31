package main

import (
	"context"
	"fmt"

	"github.com/dayeggpi/spotiup/internal/formatter"
	"github.com/dayeggpi/spotiup/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export renders the local snapshot into CSV or plain text files.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputDir := cmd.String("output")

	switch format {
	case "csv", "txt", "text":
	default:
		return fmt.Errorf("%w: --format must be csv or txt, got %q", shared.ErrInvalidFlag, format)
	}

	snapshot, err := r.loadSnapshot()
	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = r.config.Storage.Dir
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(snapshot, outputDir)
		if err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
		r.writePlain("✓ Exported snapshot to %s\n", result.SnapshotFile)
		r.writePlain("  Per-playlist files: %d\n", len(result.PlaylistFiles))
		return nil

	case "txt", "text":
		path, err := formatter.WriteTextExport(snapshot, outputDir)
		if err != nil {
			return fmt.Errorf("text export failed: %w", err)
		}
		r.writePlain("✓ Exported snapshot to %s\n", path)
		return nil
	}

	return nil
}
