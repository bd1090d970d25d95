package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/STNeto1/openapi-gen/internal/config"
)

// Execute runs the api-gen CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "api-gen",
		Short:         "Generate a typed TypeScript client from Swagger/OpenAPI documents",
		Long:          "api-gen turns a Swagger 2.0 document (or an OpenAPI 3 document it can down-convert) into TypeScript types and fetch helpers.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Config file path (JSON or YAML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	g := newGenerateCmd()
	g.SetFlagErrorFunc(flagError)
	cmd.AddCommand(g)

	i := newInitCmd()
	i.SetFlagErrorFunc(flagError)
	cmd.AddCommand(i)

	return cmd
}

// flagError turns cobra flag errors (like unknown flags) into usage errors
// that also show the command's help text.
func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
