package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var name, playlist string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the library, or one playlist, as an M3U file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			exporter := app.NewPlaylistExporter(db, ctx.settings(db))

			var path string
			var count int
			if playlist != "" {
				id, err := findPlaylist(db, playlist)
				if err != nil {
					return err
				}
				path, count, err = exporter.ExportPlaylist(id)
				if err != nil {
					return err
				}
			} else {
				path, count, err = exporter.Export(name)
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d songs to %s\n", count, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Playlist name (default \"Library\")")
	cmd.Flags().StringVar(&playlist, "playlist", "", "Export a saved playlist by name or id")
	cmd.MarkFlagsMutuallyExclusive("name", "playlist")
	return cmd
}

// findPlaylist resolves a playlist name or id.
func findPlaylist(db *store.DB, nameOrID string) (string, error) {
	playlists, err := db.ListPlaylists()
	if err != nil {
		return "", err
	}
	for _, pl := range playlists {
		if pl.ID == nameOrID || strings.EqualFold(pl.Name, nameOrID) {
			return pl.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", store.ErrPlaylistNotFound, nameOrID)
}
