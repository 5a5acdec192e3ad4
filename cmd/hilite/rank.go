package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ava12/hilite/lexer"
)

func (a *app) rankCmd() *cobra.Command {
	var (
		langs   []string
		asJson  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rank <file|->",
		Short: "Print relevance of a file for registered grammars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, e := readInput(cmd, args[0])
			if e != nil {
				return e
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			scores, e := a.reg.Rank(ctx, text, langs, &lexer.Options{Timeout: timeout})
			if e != nil {
				return e
			}

			out := cmd.OutOrStdout()
			if asJson {
				return writeJson(out, scores)
			}
			for _, s := range scores {
				mark := ""
				if s.Truncated {
					mark = " (truncated)"
				}
				fmt.Fprintf(out, "%6d %s%s\n", s.Relevance, titleStyle.Sprint(s.Name), mark)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "language names or aliases, all registered if omitted")
	cmd.Flags().BoolVarP(&asJson, "json", "j", false, "output JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "ranking time limit")
	return cmd
}
