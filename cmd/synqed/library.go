package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/domain"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and manage downloaded songs",
	}
	cmd.AddCommand(newLibraryListCommand(ctx))
	cmd.AddCommand(newLibrarySearchCommand(ctx))
	cmd.AddCommand(newLibraryRemoveCommand(ctx))
	cmd.AddCommand(newLibraryVerifyCommand(ctx))
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List songs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(ctx, func(lib *app.LibraryService) error {
				songs, err := lib.ListSongs(limit)
				if err != nil {
					return err
				}
				printSongs(cmd, songs)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of songs to show (0 for all)")
	return cmd
}

func newLibrarySearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search songs by title or artist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(ctx, func(lib *app.LibraryService) error {
				songs, err := lib.SearchSongs(strings.Join(args, " "))
				if err != nil {
					return err
				}
				printSongs(cmd, songs)
				return nil
			})
		},
	}
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete songs and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(ctx, func(lib *app.LibraryService) error {
				for _, id := range args {
					if err := lib.DeleteSong(id); err != nil {
						return fmt.Errorf("remove %s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
				}
				return nil
			})
		},
	}
}

func newLibraryVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check song files against their recorded hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(ctx, func(lib *app.LibraryService) error {
				results, err := lib.Verify()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(results))
				bad := 0
				for _, r := range results {
					if r.Status != app.IntegrityOK {
						bad++
					}
					rows = append(rows, []string{r.Song.ID, r.Song.Filename, r.Status})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"ID", "File", "Status"}, rows, nil))
				if bad > 0 {
					return fmt.Errorf("%d of %d songs failed verification", bad, len(results))
				}
				return nil
			})
		},
	}
}

// withLibrary opens the database for the duration of fn. Events go nowhere
// since no server is attached.
func withLibrary(ctx *commandContext, fn func(*app.LibraryService) error) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	lib := app.NewLibraryService(db, ctx.settings(db), nil, nil, ctx.log)
	return fn(lib)
}

func printSongs(cmd *cobra.Command, songs []*domain.Song) {
	out := cmd.OutOrStdout()
	if len(songs) == 0 {
		fmt.Fprintln(out, "No songs")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Title", "Artist", "Album", "Length"},
		songRows(songs),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func songRows(songs []*domain.Song) [][]string {
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{s.ID, s.Title, s.Artist, s.Album, formatDuration(s.Duration)})
	}
	return rows
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
