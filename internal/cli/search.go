package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"portacraft/internal/app"
)

type searchOptions struct {
	MainDir string
	Kind    string
}

func newSearchCommand() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search versions in the manifest index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}
	cmd.Flags().StringVar(&opts.MainDir, "main-dir", defaultMainDir(), "Installation directory")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by version type (release, snapshot, ...)")
	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	service := app.NewService(resolveString(cmd, opts.MainDir, "main_dir", "main-dir"))
	result, err := service.Search(ctx, app.SearchRequest{Query: query, Kind: opts.Kind})
	if err != nil {
		return err
	}
	for _, info := range result.Versions {
		fmt.Printf("%-28s %-10s %s\n", info.ID, info.Type, info.ReleaseTime)
	}
	fmt.Printf("%d versions\n", len(result.Versions))
	return nil
}
