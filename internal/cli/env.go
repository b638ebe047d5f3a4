package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the resolved API environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			env := c.Environment()
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"name":     env.Name,
				"base_url": env.BaseURL,
				"live":     env.Live,
			})
		},
	}
}
