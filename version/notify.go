package version

import (
	"fmt"

	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/util"
	"github.com/spf13/viper"
)

// Notify prints a banner when a newer release exists. It is silent when
// cli.version_check is off or the check fails.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(icon.Get(icon.Progress) + " Checking for updates...")
	latest, err := Latest()
	erase()
	if err != nil {
		return
	}

	if newer, err := Compare(latest, constant.Version); err != nil || newer <= 0 {
		return
	}

	fmt.Printf("\n%s %s %s\n%s\n\n",
		style.Fg(color.Green)("▇▇▇"),
		style.Bold("scrubline "+latest+" is available"),
		style.Faint("(installed: "+constant.Version+")"),
		style.Faint("https://github.com/scrubline/scrubline/releases/tag/v"+latest),
	)
}
