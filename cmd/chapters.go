package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
	"github.com/scrubline/scrubline/tui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)
}

// chaptersCmd groups commands inspecting the chapters of a source.
var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Inspect the chapters of a source",
}

func init() {
	chaptersCmd.AddCommand(chaptersListCmd)
	chaptersListCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON array")
	chaptersListCmd.SetOut(os.Stdout)
}

// chaptersListCmd prints the normalized chapters of a source.
var chaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the chapters of a source as they appear on the timeline",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := resolveSource(cmd)
		handleErr(err)

		index, err := src.Index()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(index.Chapters()))
			return
		}

		cmd.Println(style.Title(src.Name()))
		for i, c := range index.Chapters() {
			cmd.Println(formatChapter(i, c))
		}
	},
}

func formatChapter(i int, c timeline.Chapter) string {
	return fmt.Sprintf(
		"%s %s %s",
		style.Faint(fmt.Sprintf("%2d.", i+1)),
		style.Fg(color.Yellow)(fmt.Sprintf("%s-%s", timeline.FormatTime(c.Start), timeline.FormatTime(c.End))),
		c.Title,
	)
}

func init() {
	chaptersCmd.AddCommand(chaptersFindCmd)
	chaptersFindCmd.Flags().BoolP("start", "S", false, "Print only the chapter start in seconds")
	chaptersFindCmd.SetOut(os.Stdout)
}

// chaptersFindCmd resolves a title the same way --chapter does.
var chaptersFindCmd = &cobra.Command{
	Use:     "find [title]",
	Short:   "Find the chapter best matching a title",
	Args:    cobra.ExactArgs(1),
	Example: "  scrubline chapters find recap",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := resolveSource(cmd)
		handleErr(err)

		chapter, err := findChapter(src, args[0])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("start")) {
			cmd.Println(chapter.Start)
			return
		}

		index, err := src.Index()
		handleErr(err)
		cmd.Println(formatChapter(index.IndexAt(chapter.Start), chapter))
	},
}

func init() {
	chaptersCmd.AddCommand(chaptersPickCmd)
}

// chaptersPickCmd prompts for a chapter and starts playback there.
var chaptersPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a chapter interactively and start playing from it",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := resolveSource(cmd)
		handleErr(err)

		index, err := src.Index()
		handleErr(err)

		chapters := index.Chapters()
		options := lo.Map(chapters, func(c timeline.Chapter, i int) string {
			return fmt.Sprintf("%s %s", timeline.FormatTime(c.Start), c.Title)
		})

		var picked int
		prompt := survey.Select{
			Message: src.Name(),
			Options: options,
		}
		handleErr(survey.AskOne(&prompt, &picked))

		play(&tui.Options{
			Source:  src,
			StartAt: mo.Some(chapters[picked].Start),
		})
	},
}
