package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ava12/hilite/langdef"
)

func (a *app) checkCmd() *cobra.Command {
	var asJson bool

	cmd := &cobra.Command{
		Use:   "check <grammar.yaml>...",
		Short: "Compile grammar files and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, name := range args {
				if e := a.checkFile(cmd.OutOrStdout(), name, asJson); e != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, e.Error())
					failed++
				}
			}
			if failed != 0 {
				return fmt.Errorf("%d of %d grammar files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJson, "json", "j", false, "dump decoded descriptions as JSON")
	return cmd
}

func (a *app) checkFile(w io.Writer, name string, asJson bool) error {
	def, e := langdef.DecodeFile(name)
	if e != nil {
		return e
	}
	g, e := langdef.Compile(def, &langdef.Options{MatchTimeout: a.matchTimeout, Logger: a.log})
	if e != nil {
		return e
	}

	if asJson {
		return writeJson(w, def)
	}
	_, e = fmt.Fprintf(w, "%s: %s ok, %d modes (%d reachable)\n", name, def.Name, len(g.Modes), len(langdef.Reachable(g)))
	return e
}
