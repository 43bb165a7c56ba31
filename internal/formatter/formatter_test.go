package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dayeggpi/spotiup/internal/models"
	mocks "github.com/dayeggpi/spotiup/internal/testing"
)

func testSnapshot() *models.Snapshot {
	s := &models.Snapshot{
		Version:  models.SnapshotVersion,
		UserID:   "user1",
		UserName: "Sam",
		Playlists: []models.Playlist{
			{
				ID:         "p1",
				Name:       "Road Trip",
				Public:     true,
				SnapshotID: "a",
				Folder:     "Favorites",
				Tracks: []models.Track{
					{
						ID:         "t1",
						URI:        "spotify:track:t1",
						Name:       "Clearest Blue",
						Artists:    []string{"CHVRCHES"},
						AlbumName:  "Every Open Eye",
						DurationMS: 234000,
						AddedAt:    "2021-03-04T05:06:07Z",
					},
					{
						URI:     "spotify:local:file",
						Name:    "Demo",
						IsLocal: true,
					},
				},
			},
		},
		Liked: models.LikedCollection{
			Tracks: []models.Track{
				{
					ID:         "t2",
					URI:        "spotify:track:t2",
					Name:       "Motion Sickness",
					Artists:    []string{"Phoebe Bridgers"},
					AlbumName:  "Stranger in the Alps",
					DurationMS: 229000,
				},
			},
		},
		ExportedAt: "2025-06-01T12:00:00Z",
	}
	s.Recount()
	s.Liked.Total = 1
	return s
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testSnapshot())
	if err != nil {
		t.Fatalf("ExportToCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// Header + 2 playlist tracks + 1 liked track.
	if len(records) != 4 {
		t.Fatalf("rows = %d, want 4", len(records))
	}
	if records[0][0] != "Source" || records[0][2] != "Track Name" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "Playlist" || records[1][1] != "Road Trip" || records[1][2] != "Clearest Blue" {
		t.Errorf("playlist row = %v", records[1])
	}
	if records[2][8] != "true" {
		t.Errorf("local flag column = %v", records[2])
	}
	if records[3][0] != "Liked Songs" || records[3][2] != "Motion Sickness" {
		t.Errorf("liked row = %v", records[3])
	}
}

func TestPlaylistToCSV(t *testing.T) {
	snap := testSnapshot()
	data, err := PlaylistToCSV(&snap.Playlists[0])
	if err != nil {
		t.Fatalf("PlaylistToCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want 3", len(records))
	}
	if records[0][0] != "Track Name" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "CHVRCHES" || records[1][3] != "234000" {
		t.Errorf("track row = %v", records[1])
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testSnapshot())
	if err != nil {
		t.Fatalf("ExportToText() error = %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"Spotify Library Backup (Sam)",
		"Playlist: Road Trip (Public, 2 tracks)",
		"Folder: Favorites",
		"1. CHVRCHES - Clearest Blue [3:54]",
		"Liked Songs (1 tracks)",
		"1. Phoebe Bridgers - Motion Sickness [3:49]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q", want)
		}
	}
}

func TestToMetadataJSON(t *testing.T) {
	snap := testSnapshot()
	data, err := ToMetadataJSON(snap.Playlists[0])
	if err != nil {
		t.Fatalf("ToMetadataJSON() error = %v", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if meta["playlist_id"] != "p1" || meta["name"] != "Road Trip" {
		t.Errorf("metadata = %v", meta)
	}
	if _, ok := meta["tracks"]; ok && meta["tracks"] != nil {
		t.Error("metadata should not carry the track list")
	}
}

func TestWriteCSVExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	result, err := WriteCSVExport(testSnapshot(), dir)
	if err != nil {
		t.Fatalf("WriteCSVExport() error = %v", err)
	}

	mocks.AssertFileExists(t, result.SnapshotFile)
	if len(result.PlaylistFiles) != 2 {
		t.Fatalf("playlist files = %v", result.PlaylistFiles)
	}
	for _, f := range result.PlaylistFiles {
		mocks.AssertFileExists(t, f)
	}

	content := mocks.MustReadFile(t, result.SnapshotFile)
	if !strings.Contains(content, "Clearest Blue") {
		t.Error("snapshot CSV missing track data")
	}
}

func TestWriteTextExport(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTextExport(testSnapshot(), dir)
	if err != nil {
		t.Fatalf("WriteTextExport() error = %v", err)
	}
	mocks.AssertFileExists(t, path)

	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
