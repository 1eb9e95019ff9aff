// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, csv, markdown or json",
		Value:   "text",
	}
}

func listFlags(filter, filterUsage string) []cli.Flag {
	return []cli.Flag{
		formatFlag(),
		&cli.StringFlag{Name: "user", Usage: "Only songs uploaded by this user id"},
		&cli.StringFlag{Name: filter, Usage: filterUsage},
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Match title or author"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of songs to return", Value: 50},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to a file instead of stdout"},
	}
}

func showFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		&cli.BoolFlag{Name: "open", Usage: "Open the audio URL with the system opener"},
	}
}

// setupCommand handles setup operations for the database and remote backend.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "backend",
				Usage: "Configure the REST backend from a request copied out of browser DevTools",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupBackend,
			},
		},
	}
}

// songsCommand handles the uploaded song catalog
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Uploaded songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List uploaded songs, newest first",
				Flags:  listFlags("genre", "Only songs tagged with this genre"),
				Action: r.SongsList,
			},
			{
				Name:      "show",
				Usage:     "Show one uploaded song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     showFlags(),
				Action:    r.SongsShow,
			},
		},
	}
}

// sunoCommand handles the generated song catalog
func sunoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "suno",
		Aliases: []string{"generated"},
		Usage:   "Generated songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List generated songs, newest first",
				Flags:  listFlags("tag", "Only songs whose tags contain this value"),
				Action: r.SunoList,
			},
			{
				Name:      "show",
				Usage:     "Show one generated song with similar songs",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: append(showFlags(), &cli.IntFlag{
					Name:  "similar",
					Usage: "Number of similar songs to list",
					Value: 5,
				}),
				Action: r.SunoShow,
			},
		},
	}
}

// likedCommand handles the listener's liked songs
func likedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "liked",
		Usage: "Liked songs for the configured user",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List liked songs, most recent like first",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.LikedList,
			},
			{
				Name:      "add",
				Usage:     "Like an uploaded song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LikedAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a like",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LikedRemove,
			},
		},
	}
}

// genresCommand prints the genre picker
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List genres; --toggle adds or removes genres from a selection",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "selected", Usage: "Currently selected genres"},
			&cli.StringSliceFlag{Name: "toggle", Aliases: []string{"t"}, Usage: "Genres to toggle, in order"},
		},
		Action: r.Genres,
	}
}

// playCommand runs the play coordinator headlessly
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Request playback of each id in turn, then print the settled player state",
		ArgsUsage: "<id> [id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Usage: "Catalog of the ids: standard or generated", Value: "standard"},
			&cli.DurationFlag{Name: "gap", Usage: "Delay between consecutive requests", Value: 0},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		},
		Action: r.Play,
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the player API and event stream over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to [server] host:port)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the interactive player.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal player",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI runs", Value: "./tmp/badmusic-tui.log"},
		},
		Action: r.TUI,
	}
}

// exportCommand writes library collections to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export uploaded, generated and liked songs to files with a manifest",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory (default: badmusic_export_{epoch})"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent export workers", Value: 3},
			&cli.StringSliceFlag{Name: "only", Usage: "Collections to export: songs, suno, liked"},
		},
		Action: r.Export,
	}
}
