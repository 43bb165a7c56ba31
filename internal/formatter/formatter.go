// package formatter provides functions to export snapshot data to various formats (CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dayeggpi/spotiup/internal/models"
	"github.com/dayeggpi/spotiup/internal/shared"
)

// trackRecord renders one track as a CSV row with its source labels.
func trackRecord(source, playlistName string, track models.Track) []string {
	return []string{
		source,
		playlistName,
		track.Name,
		track.ArtistsString(),
		track.AlbumName,
		strconv.Itoa(track.DurationMS),
		track.AddedAt,
		track.URI,
		strconv.FormatBool(track.IsLocal),
	}
}

// ExportToCSV converts a full snapshot to CSV with columns: Source, Playlist Name, Track Name, Artists, Album, Duration (ms), Added At, Spotify URI, Is Local.
//
// Playlist tracks come first, one row per stored occurrence, then the liked
// collection under the "Liked Songs" source label.
func ExportToCSV(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source", "Playlist Name", "Track Name", "Artists", "Album", "Duration (ms)", "Added At", "Spotify URI", "Is Local"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range snapshot.Playlists {
		pl := &snapshot.Playlists[i]
		for _, track := range pl.Tracks {
			if err := writer.Write(trackRecord("Playlist", pl.Name, track)); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	for _, track := range snapshot.Liked.Tracks {
		if err := writer.Write(trackRecord("Liked Songs", "Liked Songs", track)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToCSV converts a single playlist's tracks to CSV format
func PlaylistToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Track Name", "Artists", "Album", "Duration (ms)", "Added At", "Spotify URI", "Is Local"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range playlist.Tracks {
		record := trackRecord("", "", track)[2:]
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to a plain text listing
func ExportToText(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Spotify Library Backup (%s)\n", snapshot.UserName))
	buf.WriteString(fmt.Sprintf("Exported: %s\n", snapshot.ExportedAt))
	buf.WriteString(fmt.Sprintf("Playlists: %d, Tracks: %d, Liked: %d\n\n", snapshot.TotalPlaylists, snapshot.TotalTracks, snapshot.Liked.TrackCount()))

	for i := range snapshot.Playlists {
		pl := &snapshot.Playlists[i]
		buf.WriteString(fmt.Sprintf("Playlist: %s (%s, %d tracks)\n", pl.Name, shared.VisibilityString(pl.Public), pl.TrackCount()))
		if pl.Folder != "" {
			buf.WriteString(fmt.Sprintf("Folder: %s\n", pl.Folder))
		}
		for j, track := range pl.Tracks {
			duration := shared.FormatDuration(track.DurationMS)
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", j+1, track.ArtistsString(), track.Name, duration))
		}
		buf.WriteString("\n")
	}

	if snapshot.Liked.TrackCount() > 0 {
		buf.WriteString(fmt.Sprintf("Liked Songs (%d tracks)\n", snapshot.Liked.TrackCount()))
		for i, track := range snapshot.Liked.Tracks {
			duration := shared.FormatDuration(track.DurationMS)
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, track.ArtistsString(), track.Name, duration))
		}
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	playlist.Tracks = nil
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SnapshotFile  string
	PlaylistFiles []string
}

// WriteCSVExport exports the snapshot to CSV in the given directory.
//
// Creates spotify_export_{date}.csv for the whole library plus one
// {playlist_id}_tracks.csv and {playlist_id}_metadata.json per playlist.
func WriteCSVExport(snapshot *models.Snapshot, outputDir string) (*CSVExportResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	csvData, err := ExportToCSV(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	snapshotFile := filepath.Join(outputDir, fmt.Sprintf("spotify_export_%s.csv", time.Now().Format("20060102")))
	if err := os.WriteFile(snapshotFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	result := &CSVExportResult{SnapshotFile: snapshotFile}

	for i := range snapshot.Playlists {
		pl := &snapshot.Playlists[i]

		plData, err := PlaylistToCSV(pl)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV for %s: %w", pl.ID, err)
		}
		tracksFile := filepath.Join(outputDir, pl.ID+"_tracks.csv")
		if err := os.WriteFile(tracksFile, plData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}

		metadataJSON, err := ToMetadataJSON(*pl)
		if err != nil {
			return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
		}
		metadataFile := filepath.Join(outputDir, pl.ID+"_metadata.json")
		if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write metadata file: %w", err)
		}

		result.PlaylistFiles = append(result.PlaylistFiles, tracksFile, metadataFile)
	}

	return result, nil
}

// WriteTextExport exports the snapshot to a plain text listing.
//
// Defaults to spotify_export_{date}.txt in the output directory.
func WriteTextExport(snapshot *models.Snapshot, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	textData, err := ExportToText(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("spotify_export_%s.txt", time.Now().Format("20060102")))
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
