// Package cmd implements the command-line interface for scrubline.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/source"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
	"github.com/scrubline/scrubline/tui"
	"github.com/scrubline/scrubline/util"
	"github.com/scrubline/scrubline/version"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("source", "s", "", "Source file with the stream and its chapters, by path or by name in the sources directory")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", completionSources))
	lo.Must0(viper.BindPFlag(key.SourceDefault, rootCmd.PersistentFlags().Lookup("source")))

	rootCmd.PersistentFlags().StringP("url", "u", "", "Override the source's HLS playlist URL")

	rootCmd.Flags().StringP("chapter", "c", "", "Start playback at the chapter best matching this title")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// leftover mpv sockets from crashed sessions
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the scrubline application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A chapter-aware HLS player for the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A chapter-aware HLS player for the terminal"),
	Example: "  " + constant.App + " --source lecture.yaml --chapter conclusion",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		src, err := resolveSource(cmd)
		handleErr(err)

		options := tui.Options{Source: src}

		if query := lo.Must(cmd.Flags().GetString("chapter")); query != "" {
			chapter, err := findChapter(src, query)
			handleErr(err)
			options.StartAt = mo.Some(chapter.Start)
		}

		play(&options)
	},
}

func play(options *tui.Options) {
	CheckDependencies()
	handleErr(tui.Run(options))
}

// resolveSource loads the source named by --source (or source.default), falling back
// to the built-in demo, and applies --url on top of it.
func resolveSource(cmd *cobra.Command) (*source.Source, error) {
	var (
		src *source.Source
		err error
	)

	if name := viper.GetString(key.SourceDefault); name != "" {
		src, err = source.Load(name)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("no source given, using the demo")
		src = source.Demo()
	}

	if url := lo.Must(cmd.Flags().GetString("url")); url != "" {
		if err := src.Merge(source.Source{URL: url}); err != nil {
			return nil, err
		}
	}

	return src, nil
}

func findChapter(src *source.Source, query string) (timeline.Chapter, error) {
	index, err := src.Index()
	if err != nil {
		return timeline.Chapter{}, err
	}

	chapter, ok := index.Find(query).Get()
	if !ok {
		return timeline.Chapter{}, fmt.Errorf("no chapter matches %q", query)
	}

	return chapter, nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
