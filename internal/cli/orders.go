package cli

import (
	"fmt"
	"strings"
	"time"

	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"

	"github.com/spf13/cobra"
)

func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Manage payment orders",
	}
	cmd.AddCommand(
		a.ordersListCmd(),
		a.ordersSearchCmd(),
		a.ordersGetCmd(),
		a.ordersCreateCmd(),
		a.orderActionCmd("capture ID AMOUNT", "Capture part of an authorised order", 2,
			func(cmd *cobra.Command, o *merchant.Order, args []string) (*merchant.Order, error) {
				amount, err := money.Parse(args[1])
				if err != nil {
					return nil, err
				}
				return o.Capture(cmd.Context(), amount)
			}),
		a.orderActionCmd("cancel ID", "Cancel an order", 1,
			func(cmd *cobra.Command, o *merchant.Order, _ []string) (*merchant.Order, error) {
				return o.Cancel(cmd.Context())
			}),
		a.refundCmd(),
		a.confirmCmd(),
	)
	return cmd
}

func (a *app) ordersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			all, err := c.Orders(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]orderView, 0, len(all))
			for _, id := range sortedIDs(all) {
				out = append(out, toOrderView(all[id]))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (a *app) ordersSearchCmd() *cobra.Command {
	var (
		f                merchant.OrderFilter
		before, from, to string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search orders by date, email or reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range []struct {
				name, value string
				dst         *time.Time
			}{
				{"before", before, &f.CreatedBefore},
				{"from", from, &f.FromCreatedDate},
				{"to", to, &f.ToCreatedDate},
			} {
				if p.value == "" {
					continue
				}
				t, err := parseTime(p.value)
				if err != nil {
					return fmt.Errorf("--%s: %w", p.name, err)
				}
				*p.dst = t
			}
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			list, err := c.SearchOrders(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := make([]orderView, 0, len(list))
			for _, o := range list {
				out = append(out, toOrderView(o))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Only orders created before this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "Only orders created at or after this time")
	cmd.Flags().StringVar(&to, "to", "", "Only orders created at or before this time")
	cmd.Flags().StringVar(&f.Email, "email", "", "Customer email")
	cmd.Flags().StringVar(&f.MerchantOrderExtRef, "ext-ref", "", "Merchant order reference")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Maximum number of orders")
	return cmd
}

func (a *app) ordersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			o, err := c.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toOrderView(o))
		},
	}
}

func (a *app) ordersCreateCmd() *cobra.Command {
	var email, description, captureMode, extRef, customerID string
	cmd := &cobra.Command{
		Use:   "create AMOUNT CURRENCY",
		Short: "Create an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[0])
			if err != nil {
				return err
			}
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			o := c.NewOrder(amount, strings.ToUpper(args[1]))
			for _, opt := range []struct {
				value string
				dst   **string
			}{
				{email, &o.Email},
				{description, &o.Description},
				{strings.ToUpper(captureMode), &o.CaptureMode},
				{extRef, &o.MerchantOrderExtRef},
				{customerID, &o.CustomerID},
			} {
				if opt.value != "" {
					v := opt.value
					*opt.dst = &v
				}
			}
			saved, err := o.Save(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toOrderView(saved))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Customer email")
	cmd.Flags().StringVar(&description, "description", "", "Order description")
	cmd.Flags().StringVar(&captureMode, "capture-mode", "", "AUTOMATIC or MANUAL")
	cmd.Flags().StringVar(&extRef, "ext-ref", "", "Merchant order reference")
	cmd.Flags().StringVar(&customerID, "customer-id", "", "Existing customer id")
	return cmd
}

type orderAction func(cmd *cobra.Command, o *merchant.Order, args []string) (*merchant.Order, error)

// orderActionCmd loads the order named by the first argument and runs fn
// on it. The client checks state and amounts before calling the API.
func (a *app) orderActionCmd(use, short string, nargs int, fn orderAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.merchantClient(cmd)
			if err != nil {
				return err
			}
			o, err := c.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			o, err = fn(cmd, o, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toOrderView(o))
		},
	}
}

func (a *app) refundCmd() *cobra.Command {
	var description string
	cmd := a.orderActionCmd("refund ID AMOUNT", "Refund part of a completed order", 2,
		func(cmd *cobra.Command, o *merchant.Order, args []string) (*merchant.Order, error) {
			amount, err := money.Parse(args[1])
			if err != nil {
				return nil, err
			}
			return o.Refund(cmd.Context(), amount, description)
		})
	cmd.Flags().StringVar(&description, "description", "", "Reason shown to the customer")
	return cmd
}

func (a *app) confirmCmd() *cobra.Command {
	var paymentMethod string
	cmd := a.orderActionCmd("confirm ID", "Confirm a pending order", 1,
		func(cmd *cobra.Command, o *merchant.Order, _ []string) (*merchant.Order, error) {
			return o.Confirm(cmd.Context(), paymentMethod)
		})
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "Saved payment method id")
	return cmd
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
