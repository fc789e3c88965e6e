package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/source"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/util"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/cobra"
)

// sourceFiles lists the source files in the sources directory.
func sourceFiles() ([]string, error) {
	entries, err := filesystem.API().ReadDir(where.Sources())
	if err != nil {
		return nil, err
	}

	return lo.FilterMap(entries, func(item os.FileInfo, _ int) (string, bool) {
		name := item.Name()
		return name, !item.IsDir() && lo.Contains(source.Extensions, strings.ToLower(filepath.Ext(name)))
	}), nil
}

func completionSources(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	files, err := sourceFiles()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return lo.Map(files, func(name string, _ int) string {
		return util.FileStem(name)
	}), cobra.ShellCompDirectiveDefault
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd provides a parent command for managing source files.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage source files describing streams and their chapters",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Print only the names, without titles")
	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd displays the source files found in the sources directory.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the source files found in the sources directory",
	Run: func(cmd *cobra.Command, args []string) {
		raw := lo.Must(cmd.Flags().GetBool("raw"))

		files, err := sourceFiles()
		handleErr(err)

		for _, name := range files {
			if raw {
				cmd.Println(util.FileStem(name))
				continue
			}

			src, err := source.Load(filepath.Join(where.Sources(), name))
			if err != nil {
				cmd.Printf("%s %s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), util.FileStem(name), style.Faint(err.Error()))
				continue
			}

			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Yellow)(util.FileStem(name)),
				src.Name(),
				style.Faint(util.Quantify(len(src.Chapters), "chapter", "chapters")),
			)
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Specify the name of the source file(s) to remove")
	lo.Must0(sourcesRemoveCmd.RegisterFlagCompletionFunc("name", completionSources))
}

// sourcesRemoveCmd deletes source files from the sources directory.
var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Permanently remove the specified source files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path, err := source.Resolve(name)
			handleErr(err)
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s successfully removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)

	sourcesGenCmd.Flags().StringP("name", "n", "", "The file name of the new source, without extension")
	sourcesGenCmd.Flags().StringP("title", "t", "", "The title shown in the player")
	sourcesGenCmd.Flags().BoolP("force", "f", false, "Overwrite an existing source file")
	sourcesGenCmd.Flags().BoolP("stdout", "o", false, "Print the source instead of saving it")

	lo.Must0(sourcesGenCmd.MarkFlagRequired("name"))
	sourcesGenCmd.SetOut(os.Stdout)
}

// sourcesGenCmd scaffolds an annotated source file from --source, --url or the demo.
var sourcesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new annotated YAML source file",
	Long: `Generate an annotated YAML source file in the sources directory.
The chapters are taken from --source (or the demo) and the playlist from --url when given.`,
	Example: "  scrubline sources gen --name lecture --url https://example.com/master.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := resolveSource(cmd)
		handleErr(err)

		if title := lo.Must(cmd.Flags().GetString("title")); title != "" {
			src.Title = title
		}

		if lo.Must(cmd.Flags().GetBool("stdout")) {
			handleErr(src.Scaffold(cmd.OutOrStdout()))
			return
		}

		name := util.SanitizeFilename(lo.Must(cmd.Flags().GetString("name")))
		target := filepath.Join(where.Sources(), name+".yaml")
		handleErr(src.Save(target, lo.Must(cmd.Flags().GetBool("force"))))

		cmd.Println(target)
	},
}
