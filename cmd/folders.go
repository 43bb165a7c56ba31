package main

import (
	"context"
	"sort"

	"github.com/urfave/cli/v3"
)

// FoldersSet assigns a playlist to a local folder path. An empty path
// removes the assignment.
func (r *Runner) FoldersSet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	path := cmd.String("path")

	st, err := r.openStore()
	if err != nil {
		return err
	}

	if err := st.SetFolder(id, path); err != nil {
		return err
	}

	if path == "" {
		r.writePlain("✓ Removed folder assignment for %s\n", id)
	} else {
		r.writePlain("✓ Assigned %s to folder %q\n", id, path)
	}

	return nil
}

// FoldersList prints the folder assignments grouped by folder path.
func (r *Runner) FoldersList(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore()
	if err != nil {
		return err
	}

	folders := st.Folders()
	if len(folders) == 0 {
		r.writePlain("No folder assignments.\n")
		return nil
	}

	// Names come from the snapshot when one exists; folder assignments
	// are valid without it.
	names := map[string]string{}
	if snapshot, err := st.LoadSnapshot(); err == nil && snapshot != nil {
		for _, p := range snapshot.Playlists {
			names[p.ID] = p.Name
		}
	}

	byFolder := map[string][]string{}
	for id, path := range folders {
		byFolder[path] = append(byFolder[path], id)
	}

	paths := make([]string, 0, len(byFolder))
	for path := range byFolder {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		r.writePlain("%s\n", path)
		ids := byFolder[path]
		sort.Strings(ids)
		for _, id := range ids {
			if name, ok := names[id]; ok {
				r.writePlain("  %s (%s)\n", name, id)
			} else {
				r.writePlain("  %s\n", id)
			}
		}
	}

	return nil
}
