package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) languagesCmd() *cobra.Command {
	var asJson bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List registered grammars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := a.reg.Infos()
			out := cmd.OutOrStdout()
			if asJson {
				return writeJson(out, infos)
			}

			for _, info := range infos {
				line := titleStyle.Sprint(info.Name)
				if info.Version != "" {
					line += " v" + info.Version
				}
				if len(info.Aliases) != 0 {
					line += " (" + strings.Join(info.Aliases, ", ") + ")"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJson, "json", "j", false, "output JSON")
	return cmd
}
