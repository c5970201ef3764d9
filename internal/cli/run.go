package cli

import (
	"github.com/spf13/cobra"
)

var flagMaxRepos int

func init() {
	cmd := &cobra.Command{
		Use:   "run \"<query>\"",
		Short: "Scan repositories matching a GitHub search query",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runQueries([]queryInput{{
				Label:    args[0],
				Query:    args[0],
				MaxRepos: flagMaxRepos,
			}})
		},
	}
	cmd.Flags().IntVar(&flagMaxRepos, "max-repos", 5, "stop after this many repositories (0 = search ceiling)")
	rootCmd.AddCommand(cmd)
}
