package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewCustomersCommand creates the customers command group.
func NewCustomersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "cus"},
		Short:   "Manage customers",
		Long:    "Create, inspect, list and delete Stripe customers",
	}

	cmd.AddCommand(newCustomersGetCommand())
	cmd.AddCommand(newCustomersListCommand())
	cmd.AddCommand(newCustomersCreateCommand())
	cmd.AddCommand(newCustomersDeleteCommand())

	return cmd
}

func newCustomersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CUSTOMER_ID",
		Short: "Get customer details",
		Long:  "Display detailed information about a specific customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := execute(cmd, stripe.RetrieveCustomer(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get customer: %w", err)
			}

			return outputCustomer(cmd, &customer)
		},
	}
}

func newCustomersListCommand() *cobra.Command {
	var (
		limit int
		all   bool
		email string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Long:  "List customers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &stripe.CustomerListParams{
				ListParams: stripe.ListParams{Limit: stripe.Int64(int64(pageSize(limit)))},
			}

			if email != "" {
				params.Email = stripe.String(email)
			}

			customers, err := listItems(cmd, stripe.ListCustomers(params), limit, all)
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			rows := make([][]string, 0, len(customers))
			for _, customer := range customers {
				rows = append(rows, []string{
					customer.ID,
					orNotAvailable(customer.Email),
					orNotAvailable(customer.Name),
					formatTimestamp(customer.Created),
				})
			}

			return outputResult(cmd.OutOrStdout(), customers, []string{"ID", "Email", "Name", "Created"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "maximum number of customers to show")
	cmd.Flags().BoolVar(&all, "all", false, "page through every customer")
	cmd.Flags().StringVar(&email, "email", "", "only customers with this email")

	return cmd
}

func newCustomersCreateCommand() *cobra.Command {
	var (
		email       string
		name        string
		phone       string
		description string
		metadata    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		Long:  "Create a new customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &stripe.CustomerParams{Metadata: metadata}

			if email != "" {
				params.Email = stripe.String(email)
			}

			if name != "" {
				params.Name = stripe.String(name)
			}

			if phone != "" {
				params.Phone = stripe.String(phone)
			}

			if description != "" {
				params.Description = stripe.String(description)
			}

			customer, err := execute(cmd, stripe.CreateCustomer(params))
			if err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}

			return outputCustomer(cmd, &customer)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email")
	cmd.Flags().StringVar(&name, "name", "", "customer name")
	cmd.Flags().StringVar(&phone, "phone", "", "customer phone number")
	cmd.Flags().StringVar(&description, "description", "", "internal description")
	cmd.Flags().StringToStringVar(&metadata, "metadata", nil, "metadata as KEY=VALUE pairs")

	return cmd
}

func newCustomersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CUSTOMER_ID",
		Short: "Delete a customer",
		Long:  "Permanently delete a customer and cancel its subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := execute(cmd, stripe.DeleteCustomer(args[0]))
			if err != nil {
				return fmt.Errorf("failed to delete customer: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), deleted, []string{"ID", "Deleted"}, [][]string{
				{deleted.ID, formatBool(deleted.Deleted)},
			})
		},
	}
}

func outputCustomer(cmd *cobra.Command, customer *stripe.Customer) error {
	return outputResult(cmd.OutOrStdout(), customer, []string{"Property", "Value"}, [][]string{
		{"ID", customer.ID},
		{"Email", orNotAvailable(customer.Email)},
		{"Name", orNotAvailable(customer.Name)},
		{"Phone", orNotAvailable(customer.Phone)},
		{"Balance", strconv.FormatInt(customer.Balance, 10)},
		{"Delinquent", formatBool(customer.Delinquent)},
		{"Created", formatTimestamp(customer.Created)},
		{"Live Mode", formatBool(customer.Livemode)},
	})
}

// pageSize clamps a display limit to a valid page size.
func pageSize(limit int) int {
	return min(max(limit, constants.MinPageLimit), constants.MaxPageLimit)
}
