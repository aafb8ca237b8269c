package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List albums with record and tag counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		verify, _ := cmd.Flags().GetBool("verify")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "albums: %s\nassets: %s\n\n", a.metadata.Path(), a.assets.Root())
		if warn := a.journal.LoadWarning(); warn != nil {
			fmt.Fprintf(out, "warning: %v\n", warn)
		}

		albums := a.journal.Albums()
		if len(albums) == 0 {
			fmt.Fprintln(out, "no albums")
			return nil
		}

		selected, _ := a.journal.Selected()
		for _, album := range albums {
			marker := " "
			if album.ID == selected.ID {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s  (%d records)\n", marker, album.ID, album.Name, len(album.Records))
		}

		if selected.ID != "" {
			since, err := a.prefs.UpdatedAt(cmd.Context(), journal.LastSelectedAlbumKey)
			switch {
			case err == nil:
				fmt.Fprintf(out, "\nselected %q since %s\n", selected.Name, since.Local().Format(time.RFC1123))
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}

			fmt.Fprintf(out, "\ntags in %q:\n", selected.Name)
			for _, tc := range a.journal.TagCounts() {
				fmt.Fprintf(out, "  #%s %d\n", tc.Tag, tc.Count)
			}
		}

		if verify {
			return verifyAssets(cmd, a, albums, out)
		}
		return nil
	},
}

func init() {
	albumsCmd.Flags().Bool("verify", false, "check that every record's image files exist")
	rootCmd.AddCommand(albumsCmd)
}

func verifyAssets(cmd *cobra.Command, a *app, albums []storage.Album, out io.Writer) error {
	missing := 0
	for _, album := range albums {
		for _, rec := range album.Records {
			for _, path := range rec.AssetPaths() {
				ok, err := a.assets.Exists(cmd.Context(), path)
				if err != nil {
					return err
				}
				if !ok {
					missing++
					fmt.Fprintf(out, "missing %s (album %q, record %s)\n", path, album.Name, rec.ID)
				}
			}
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d asset(s) missing", missing)
	}
	fmt.Fprintln(out, "\nall assets present")
	return nil
}
