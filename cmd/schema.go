package cmd

import (
	"encoding/json"
	"os"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/source"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("output", "o", "", "Write the schema to this file instead of stdout")
	schemaCmd.SetOut(os.Stdout)
}

// schemaCmd prints the JSON Schema of source files, for editor completion.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of source files",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := json.MarshalIndent(source.Schema(), "", "  ")
		handleErr(err)

		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			handleErr(filesystem.API().WriteFile(output, data, 0o644))
			return
		}

		cmd.Println(string(data))
	},
}
