package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkRunner = runCheck

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build and validate an API manifest without generating output",
		Long: "Build and validate an API manifest without generating output. " +
			"Exits non-zero when the manifest fails schema normalization, name registration, or reference validation.",
		Example: "  damascus check --input api.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			if input == "" {
				return newUsageError("check: --input is required")
			}
			return checkRunner(cmd.Context(), input)
		},
	}
	cmd.Flags().String("input", "", "Path to the API manifest (YAML)")
	return cmd
}

func runCheck(ctx context.Context, input string) error {
	_ = ctx
	tree, err := buildTree(input)
	if err != nil {
		return err
	}

	endpoints := 0
	for _, service := range tree.Services {
		endpoints += len(service.Endpoints)
	}
	fmt.Fprintf(os.Stdout, "%s: %d types, %d services, %d endpoints\n",
		tree.Name, len(tree.Types), len(tree.Services), endpoints)
	return nil
}
