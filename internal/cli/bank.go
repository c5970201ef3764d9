package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/services/querybank"
)

var (
	flagAddTags     string
	flagAddMaxRepos int
	flagFilterTag   string
)

func openBank() (*querybank.Bank, error) {
	return querybank.Load(resolve(flagQueries, conf(), "QUERIES", "config/queries.yaml"))
}

func bankInputs(qs []querybank.Query) []queryInput {
	out := make([]queryInput, 0, len(qs))
	for _, q := range qs {
		out = append(out, queryInput{Label: q.Name, Query: q.Query, MaxRepos: q.MaxRepos})
	}
	return out
}

func printQueries(qs []querybank.Query) {
	for _, q := range qs {
		tags := ""
		if len(q.Tags) > 0 {
			tags = "  [" + strings.Join(q.Tags, ",") + "]"
		}
		fmt.Printf("%3d  %-24s %s%s\n", q.ID, q.Name, q.Query, tags)
	}
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add \"<name>\" \"<query>\"",
		Short: "Add a query to the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			bank, err := openBank()
			if err != nil {
				return err
			}
			var tags []string
			if flagAddTags != "" {
				tags = strings.Split(flagAddTags, ",")
			}
			q, err := bank.Add(args[0], args[1], tags, flagAddMaxRepos)
			if err != nil {
				return err
			}
			fmt.Printf("added query %d (%s)\n", q.ID, q.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&flagAddTags, "tags", "", "comma-separated tags")
	addCmd.Flags().IntVar(&flagAddMaxRepos, "max-repos", 0, "repository cap for this query (0 = search ceiling)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a query from the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return perr.InvalidArgf("id must be an integer, got %q", args[0])
			}
			bank, err := openBank()
			if err != nil {
				return err
			}
			if err := bank.Delete(id); err != nil {
				return err
			}
			fmt.Printf("deleted query %d\n", id)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the queries in the bank",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bank, err := openBank()
			if err != nil {
				return err
			}
			qs := bank.List()
			if len(qs) == 0 {
				fmt.Println("query bank is empty")
				return nil
			}
			printQueries(qs)
			return nil
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run every query in the bank",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bank, err := openBank()
			if err != nil {
				return err
			}
			qs := bank.List()
			if len(qs) == 0 {
				return perr.NotFoundf("query bank is empty")
			}
			return runQueries(bankInputs(qs))
		},
	}

	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Run one randomly chosen query from the bank",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bank, err := openBank()
			if err != nil {
				return err
			}
			q, err := bank.Random()
			if err != nil {
				return err
			}
			return runQueries(bankInputs([]querybank.Query{q}))
		},
	}

	filterCmd := &cobra.Command{
		Use:   "filter --tag <tag>",
		Short: "Run every bank query carrying the given tag",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bank, err := openBank()
			if err != nil {
				return err
			}
			qs := bank.FilterByTag(flagFilterTag)
			if len(qs) == 0 {
				return perr.NotFoundf("no queries tagged %q", flagFilterTag)
			}
			return runQueries(bankInputs(qs))
		},
	}
	filterCmd.Flags().StringVar(&flagFilterTag, "tag", "", "tag to match (case-insensitive)")
	_ = filterCmd.MarkFlagRequired("tag")

	rootCmd.AddCommand(addCmd, deleteCmd, listCmd, allCmd, randomCmd, filterCmd)
}
