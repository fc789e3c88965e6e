package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/hls"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/network"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CheckDependencies verifies that the configured mpv executable can be found.
func CheckDependencies() {
	player := viper.GetString(key.PlayerPath)
	if _, err := exec.LookPath(player); err != nil {
		log.Errorf("%s not found: %v", player, err)
		printMissingDependencyError(player)
		os.Exit(1)
	}
}

// playerPath resolves the configured mpv executable for display.
func playerPath() string {
	path, err := exec.LookPath(viper.GetString(key.PlayerPath))
	if err != nil {
		return viper.GetString(key.PlayerPath) + " (not found)"
	}
	return path
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))
	hint := style.Faint(fmt.Sprintf("Set %s if mpv is installed elsewhere.", key.PlayerPath))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
			"\n"+hint,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetOut(os.Stdout)
}

// checkCmd verifies that playback can start: mpv is installed and the playlist is reachable.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that mpv is installed and the source's playlist can be loaded",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		ok := style.Fg(color.Green)(icon.Get(icon.Success))
		player := viper.GetString(key.PlayerPath)
		cmd.Printf("%s %s found\n", ok, player)

		src, err := resolveSource(cmd)
		handleErr(err)

		index, err := src.Index()
		handleErr(err)
		cmd.Printf("%s %s, %s\n", ok, src.Name(), util.Quantify(index.Len(), "chapter", "chapters"))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		manifest, err := hls.FetchManifest(ctx, network.Client, src.URL)
		handleErr(err)

		labels := lo.Map(manifest.Levels, func(l media.Level, _ int) string {
			return l.Label()
		})
		cmd.Printf("%s playlist offers %s\n", ok, strings.Join(labels, ", "))
	},
}
