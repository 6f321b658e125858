package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/xkcd/internal/explain"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <number|latest|random>",
	Short: "Print the explanation of a comic from the explain wiki",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices(globalOptions())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var e explain.Explanation

		// a plain number needs no metadata lookup
		if n, perr := parseNumber(args[0]); perr == nil {
			e, err = svc.scraper.Explain(ctx, n)
		} else {
			c, rerr := resolveArg(ctx, svc.resolver, args[0])
			if rerr != nil {
				return rerr
			}
			e, err = svc.scraper.ExplainComic(ctx, c)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "Explanation of %s\n", e.ComicURL)
		_, _ = fmt.Fprintf(w, "Source: %s\n\n", e.URL)
		_, _ = fmt.Fprintln(w, strings.TrimSpace(e.Text))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
