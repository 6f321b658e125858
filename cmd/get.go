package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brogergvhs/xkcd/internal/xkcd"

	"github.com/spf13/cobra"
)

var flagJSON bool

var getCmd = &cobra.Command{
	Use:   "get <number|latest|random>",
	Short: "Show the metadata of one comic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices(globalOptions())
		if err != nil {
			return err
		}

		c, err := resolveArg(cmd.Context(), svc.resolver, args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}

		printComic(cmd.OutOrStdout(), c)
		return nil
	},
}

func printComic(w io.Writer, c xkcd.Comic) {
	_, _ = fmt.Fprintf(w, "#%d: %s\n", c.Number(), c.Title())
	_, _ = fmt.Fprintf(w, "Published: %s (%s)\n", c.Published(), c.Published().Time().Weekday())
	_, _ = fmt.Fprintf(w, "Link:      %s\n", c.Permalink())
	_, _ = fmt.Fprintf(w, "Image:     %s\n", c.ImageURL())
	if c.AltText() != "" {
		_, _ = fmt.Fprintf(w, "Alt:       %s\n", c.AltText())
	}
}

func init() {
	getCmd.Flags().BoolVar(&flagJSON, "json", false, "print the comic as JSON")
	rootCmd.AddCommand(getCmd)
}
