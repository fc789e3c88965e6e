package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/cobra"
)

type wherePath struct {
	name, flag, short string
	path              func() string
}

var wherePaths = []wherePath{
	{"Config", "config", "c", where.Config},
	{"Sources", "sources", "s", where.Sources},
	{"Logs", "logs", "l", where.Logs},
	{"Cache", "cache", "", where.Cache},
	{"Sockets", "sockets", "", where.Sockets},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, p := range wherePaths {
		whereCmd.Flags().BoolP(p.flag, p.short, false, p.name+" path")
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(p wherePath, _ int) string {
		return p.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where scrubline keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(p.flag)) {
				cmd.Println(p.path())
				return
			}
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		for i, p := range wherePaths {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n", header(p.name+"?"), style.Fg(color.Yellow)("--"+p.flag))
			cmd.Println(p.path())
		}
	},
}
