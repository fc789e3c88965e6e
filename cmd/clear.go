package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/util"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/cobra"
)

// clearTarget is a directory `clear` can wipe, selected by its flag.
type clearTarget struct {
	flag, short string
	name        string
	location    func() string
}

var clearTargets = []clearTarget{
	{"cache", "c", "cache (update check, bandwidth estimates)", where.Cache},
	{"logs", "l", "logs", where.Logs},
	{"temp", "t", "temporary files (mpv sockets)", where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		clearCmd.Flags().BoolP(target.flag, target.short, false, "clear "+target.name)
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached, logged and temporary files",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.flag))
			err := util.Delete(target.location())
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.flag))
		}
	},
}
