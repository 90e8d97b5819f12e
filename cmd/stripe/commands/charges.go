package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewChargesCommand creates the charges command group.
func NewChargesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "charges",
		Aliases: []string{"charge", "ch"},
		Short:   "Manage charges",
		Long:    "Create, inspect and list Stripe charges",
	}

	cmd.AddCommand(newChargesCreateCommand())
	cmd.AddCommand(newChargesGetCommand())
	cmd.AddCommand(newChargesListCommand())

	return cmd
}

func newChargesCreateCommand() *cobra.Command {
	var (
		amount      int64
		currency    string
		customer    string
		source      string
		description string
		noCapture   bool
		metadata    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a charge",
		Long:  "Charge a customer or payment source. Combine with --retries or --resume for safe retries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return constants.ErrAmountRequired
			}

			if currency == "" {
				return constants.ErrCurrencyRequired
			}

			params := &stripe.ChargeParams{
				Amount:   stripe.Int64(amount),
				Currency: stripe.String(currency),
				Metadata: metadata,
			}

			if customer != "" {
				params.Customer = stripe.String(customer)
			}

			if source != "" {
				params.Source = stripe.String(source)
			}

			if description != "" {
				params.Description = stripe.String(description)
			}

			if noCapture {
				params.Capture = stripe.Bool(false)
			}

			charge, err := execute(cmd, stripe.CreateCharge(params))
			if err != nil {
				return fmt.Errorf("failed to create charge: %w", err)
			}

			return outputCharge(cmd, &charge)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the currency's smallest unit")
	cmd.Flags().StringVar(&currency, "currency", "", "three-letter ISO currency code")
	cmd.Flags().StringVar(&customer, "customer", "", "customer to charge")
	cmd.Flags().StringVar(&source, "source", "", "payment source or token, e.g. tok_visa")
	cmd.Flags().StringVar(&description, "description", "", "charge description")
	cmd.Flags().BoolVar(&noCapture, "no-capture", false, "authorize only, capture later")
	cmd.Flags().StringToStringVar(&metadata, "metadata", nil, "metadata as KEY=VALUE pairs")

	return cmd
}

func newChargesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CHARGE_ID",
		Short: "Get charge details",
		Long:  "Display detailed information about a specific charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charge, err := execute(cmd, stripe.RetrieveCharge(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get charge: %w", err)
			}

			return outputCharge(cmd, &charge)
		},
	}
}

func newChargesListCommand() *cobra.Command {
	var (
		limit         int
		all           bool
		customer      string
		paymentIntent string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List charges",
		Long:  "List charges, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &stripe.ChargeListParams{
				ListParams: stripe.ListParams{Limit: stripe.Int64(int64(pageSize(limit)))},
			}

			if customer != "" {
				params.Customer = stripe.String(customer)
			}

			if paymentIntent != "" {
				params.PaymentIntent = stripe.String(paymentIntent)
			}

			charges, err := listItems(cmd, stripe.ListCharges(params), limit, all)
			if err != nil {
				return fmt.Errorf("failed to list charges: %w", err)
			}

			rows := make([][]string, 0, len(charges))
			for _, charge := range charges {
				rows = append(rows, []string{
					charge.ID,
					formatAmount(charge.Amount, charge.Currency),
					orNotAvailable(charge.Status),
					formatBool(charge.Paid),
					formatTimestamp(charge.Created),
				})
			}

			return outputResult(cmd.OutOrStdout(), charges, []string{"ID", "Amount", "Status", "Paid", "Created"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "maximum number of charges to show")
	cmd.Flags().BoolVar(&all, "all", false, "page through every charge")
	cmd.Flags().StringVar(&customer, "customer", "", "only charges of this customer")
	cmd.Flags().StringVar(&paymentIntent, "payment-intent", "", "only charges of this payment intent")

	return cmd
}

func outputCharge(cmd *cobra.Command, charge *stripe.Charge) error {
	rows := [][]string{
		{"ID", charge.ID},
		{"Amount", formatAmount(charge.Amount, charge.Currency)},
		{"Amount Refunded", strconv.FormatInt(charge.AmountRefunded, 10)},
		{"Status", orNotAvailable(charge.Status)},
		{"Paid", formatBool(charge.Paid)},
		{"Captured", formatBool(charge.Captured)},
		{"Customer", orNotAvailable(charge.Customer)},
	}

	if charge.Source != nil {
		rows = append(rows, []string{"Source", charge.Source.Object + " " + charge.Source.GetID()})
	}

	if charge.FailureCode != "" {
		rows = append(rows, []string{"Failure", charge.FailureCode + ": " + charge.FailureMessage})
	}

	rows = append(rows, []string{"Created", formatTimestamp(charge.Created)})

	return outputResult(cmd.OutOrStdout(), charge, []string{"Property", "Value"}, rows)
}
