package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/toolchain"
)

var errToolsMissing = errors.New("required tools are missing")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var install, withBun, clearCache bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that yt-dlp, ffmpeg and bun are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if clearCache {
				if err := db.ClearCache(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Metadata cache cleared")
			}

			version := ctx.settings(db).YtDlpVersion()
			tools := ctx.toolchain()

			if install {
				wanted := []string{constants.ToolYtDlp, constants.ToolFFmpeg}
				if withBun {
					wanted = append(wanted, constants.ToolBun)
				}
				for _, name := range wanted {
					v := tools.Versions[name]
					if name == constants.ToolYtDlp {
						v = version
					}
					path, err := tools.Ensure(cmd.Context(), name, v)
					if err != nil {
						return fmt.Errorf("install %s %s: %w", name, v, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s ready at %s\n", name, v, path)
				}
			}

			statuses := tools.Check(version)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Status", "Version", "Path", "Detail"},
				statusRows(statuses),
				nil,
			))
			if !toolchain.Ready(statuses) {
				return errToolsMissing
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "Download the pinned yt-dlp and ffmpeg releases first")
	cmd.Flags().BoolVar(&withBun, "bun", false, "With --install, also download bun for JS challenges")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Drop cached metadata lookups")
	return cmd
}

func statusRows(statuses []toolchain.Status) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		state := "ok"
		switch {
		case !st.Available && st.Optional:
			state = "missing (optional)"
		case !st.Available:
			state = "missing"
		}
		rows = append(rows, []string{st.Name, state, st.Version, st.Path, st.Detail})
	}
	return rows
}
