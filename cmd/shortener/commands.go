package main

import (
	"fmt"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/darkodi/shortstore/internal/encoder"
	"github.com/darkodi/shortstore/internal/errors"
)

func newShortenCmd(a *app) *cobra.Command {
	var copyCode bool

	cmd := &cobra.Command{
		Use:   "shorten <url>",
		Short: "Shorten a URL, or print its existing code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			longURL := args[0]
			if existing, err := a.svc.LookupByURL(longURL); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "This URL is already shortened: %s\n", existing)
				return nil
			}

			code, err := a.svc.Shorten(longURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code: %s\n", code)

			if copyCode {
				if err := clipboard.WriteAll(code); err != nil {
					a.log.Warn("could not copy code to clipboard", "error", err.Error())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyCode, "copy", false, "copy the code to the clipboard")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show the mapping stored under a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !encoder.IsValid(args[0]) {
				return errors.InvalidInput("short code must be base62: " + args[0])
			}
			rec, err := a.svc.LookupByCode(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Long URL: %s\n", rec.OriginalURL)
			fmt.Fprintf(out, "Created: %s\n", rec.Timestamp())
			fmt.Fprintf(out, "ID: %d\n", rec.ID)
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <url>",
		Short: "Print the code assigned to a long URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := a.svc.LookupByURL(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Short code: %s\n", code)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all mappings in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := a.svc.List()
			if len(urls) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No mappings stored yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLONG URL\tID\tCREATED AT")
			for _, u := range urls {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", u.ShortCode, truncate(u.OriginalURL, 40), u.ID, u.Timestamp())
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete the mapping stored under a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.svc.Delete(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return errors.URLNotFound(args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted mapping for code: %s\n", args[0])
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write all mappings to a CSV file (default export.csv)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "export.csv"
			if len(args) == 1 && args[0] != "" {
				path = args[0]
			}
			if err := a.svc.Export(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d mappings to %s\n", a.svc.Len(), path)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of mappings and the next id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", a.repo.Name())
			fmt.Fprintf(out, "Mappings: %d\n", a.svc.Len())
			fmt.Fprintf(out, "Next ID: %d (code %s)\n", a.svc.NextID(), encoder.Encode(a.svc.NextID()))
			return nil
		},
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
