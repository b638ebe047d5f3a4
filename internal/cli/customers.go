package cli

import (
	"github.com/spf13/cobra"
)

var customerFlags = []struct {
	flag, field, usage string
}{
	{"full-name", "full_name", "Full name"},
	{"business-name", "business_name", "Business name"},
	{"email", "email", "Email address"},
	{"phone", "phone", "Phone number"},
}

func (a *app) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Manage customers",
	}
	cmd.AddCommand(
		a.customersListCmd(),
		a.customersGetCmd(),
		a.customersSaveCmd("create", "Create a customer", cobra.NoArgs),
		a.customersSaveCmd("update ID", "Update fields of a customer", cobra.ExactArgs(1)),
		a.customersDeleteCmd(),
	)
	return cmd
}

func (a *app) customersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			all, err := c.Customers(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]customerView, 0, len(all))
			for _, id := range sortedIDs(all) {
				out = append(out, toCustomerView(all[id]))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (a *app) customersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			cu, err := c.Customer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toCustomerView(cu))
		},
	}
}

// customersSaveCmd backs both create and update: only flags given on the
// command line are sent.
func (a *app) customersSaveCmd(use, short string, args cobra.PositionalArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			cu := c.NewCustomer()
			if len(args) == 1 {
				if cu, err = c.Customer(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			fields := map[string]any{}
			for _, f := range customerFlags {
				if cmd.Flags().Changed(f.flag) {
					v, _ := cmd.Flags().GetString(f.flag)
					fields[f.field] = v
				}
			}
			if err := cu.Update(fields); err != nil {
				return err
			}
			saved, err := cu.Save(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toCustomerView(saved))
		},
	}
	for _, f := range customerFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func (a *app) customersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			cu, err := c.Customer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := cu.Delete(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": cu.ID, "deleted": true})
		},
	}
}
