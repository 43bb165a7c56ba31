// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles initial configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the genre cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the OAuth2 authorization flow and token inspection.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored token and the authenticated user",
				Action: r.AuthStatus,
			},
		},
	}
}

// backupCommand handles full library backup runs.
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Back up the full Spotify library",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Fetch every playlist and liked song, then merge into the local snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Continue an interrupted run from its cursor",
					},
					&cli.BoolFlag{
						Name:  "exclude-owned",
						Usage: "Skip playlists owned by Spotify",
					},
					&cli.BoolFlag{
						Name:  "exclude-collab",
						Usage: "Skip collaborative playlists",
					},
					&cli.BoolFlag{
						Name:  "genres",
						Usage: "Enrich tracks with artist genres",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output merge statistics as JSON",
					},
				},
				Action: r.BackupRun,
			},
			{
				Name:   "status",
				Usage:  "Show pending resume state from an interrupted run",
				Action: r.BackupStatus,
			},
		},
	}
}

// refreshCommand handles selective playlist refresh.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Re-fetch specific playlists and merge them into the snapshot",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "id",
				Usage:    "Playlist ID to refresh (repeatable)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "genres",
				Usage: "Enrich tracks with artist genres",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output merge statistics as JSON",
			},
		},
		Action: r.Refresh,
	}
}

// libraryCommand inspects the local snapshot.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Inspect the local library snapshot",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List playlists in the snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LibraryPlaylists,
			},
			{
				Name:  "stats",
				Usage: "Show library statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryStats,
			},
			{
				Name:   "history",
				Usage:  "List rotated snapshot backups",
				Action: r.LibraryHistory,
			},
			{
				Name:   "log",
				Usage:  "Show the update log of past merges",
				Action: r.LibraryLog,
			},
		},
	}
}

// foldersCommand manages local folder assignments for playlists.
func foldersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "Organize playlists into local folders",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Assign a playlist to a folder (empty path removes the assignment)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "Folder path, e.g. 'Chill/Evening'",
					},
				},
				Action: r.FoldersSet,
			},
			{
				Name:   "list",
				Usage:  "List folder assignments",
				Action: r.FoldersList,
			},
		},
	}
}

// exportCommand renders the snapshot into portable formats.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the snapshot to CSV or plain text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: csv or txt",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: storage dir)",
			},
		},
		Action: r.Export,
	}
}
