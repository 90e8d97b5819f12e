package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// NewPaymentIntentsCommand creates the payment-intents command group.
func NewPaymentIntentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment-intents",
		Aliases: []string{"payment-intent", "pi"},
		Short:   "Manage payment intents",
		Long:    "Create, inspect and list Stripe payment intents",
	}

	cmd.AddCommand(newPaymentIntentsCreateCommand())
	cmd.AddCommand(newPaymentIntentsGetCommand())
	cmd.AddCommand(newPaymentIntentsListCommand())

	return cmd
}

func newPaymentIntentsCreateCommand() *cobra.Command {
	var (
		amount             int64
		currency           string
		customer           string
		description        string
		paymentMethod      string
		paymentMethodTypes []string
		captureMethod      string
		confirm            bool
		metadata           map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment intent",
		Long:  "Create a payment intent, optionally confirming it immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return constants.ErrAmountRequired
			}

			if currency == "" {
				return constants.ErrCurrencyRequired
			}

			params := &stripe.PaymentIntentParams{
				Amount:             stripe.Int64(amount),
				Currency:           stripe.String(currency),
				PaymentMethodTypes: paymentMethodTypes,
				Metadata:           metadata,
			}

			if customer != "" {
				params.Customer = stripe.String(customer)
			}

			if description != "" {
				params.Description = stripe.String(description)
			}

			if paymentMethod != "" {
				params.PaymentMethod = stripe.String(paymentMethod)
			}

			if captureMethod != "" {
				params.CaptureMethod = stripe.String(captureMethod)
			}

			if confirm {
				params.Confirm = stripe.Bool(true)
			}

			intent, err := execute(cmd, stripe.CreatePaymentIntent(params))
			if err != nil {
				return fmt.Errorf("failed to create payment intent: %w", err)
			}

			return outputPaymentIntent(cmd, &intent)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the currency's smallest unit")
	cmd.Flags().StringVar(&currency, "currency", "", "three-letter ISO currency code")
	cmd.Flags().StringVar(&customer, "customer", "", "customer the intent belongs to")
	cmd.Flags().StringVar(&description, "description", "", "payment description")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "payment method to attach, e.g. pm_card_visa")
	cmd.Flags().StringSliceVar(&paymentMethodTypes, "payment-method-types", nil, "allowed payment method types")
	cmd.Flags().StringVar(&captureMethod, "capture-method", "", "automatic or manual")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm the intent immediately")
	cmd.Flags().StringToStringVar(&metadata, "metadata", nil, "metadata as KEY=VALUE pairs")

	return cmd
}

func newPaymentIntentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PAYMENT_INTENT_ID",
		Short: "Get payment intent details",
		Long:  "Display detailed information about a specific payment intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := execute(cmd, stripe.RetrievePaymentIntent(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get payment intent: %w", err)
			}

			return outputPaymentIntent(cmd, &intent)
		},
	}
}

func newPaymentIntentsListCommand() *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payment intents",
		Long:  "List payment intents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &stripe.ListParams{Limit: stripe.Int64(int64(pageSize(limit)))}

			intents, err := listItems(cmd, stripe.ListPaymentIntents(params), limit, all)
			if err != nil {
				return fmt.Errorf("failed to list payment intents: %w", err)
			}

			rows := make([][]string, 0, len(intents))
			for _, intent := range intents {
				rows = append(rows, []string{
					intent.ID,
					formatAmount(intent.Amount, intent.Currency),
					string(intent.Status),
					formatTimestamp(intent.Created),
				})
			}

			return outputResult(cmd.OutOrStdout(), intents, []string{"ID", "Amount", "Status", "Created"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "maximum number of payment intents to show")
	cmd.Flags().BoolVar(&all, "all", false, "page through every payment intent")

	return cmd
}

func outputPaymentIntent(cmd *cobra.Command, intent *stripe.PaymentIntent) error {
	return outputResult(cmd.OutOrStdout(), intent, []string{"Property", "Value"}, [][]string{
		{"ID", intent.ID},
		{"Amount", formatAmount(intent.Amount, intent.Currency)},
		{"Amount Received", formatAmount(intent.AmountReceived, intent.Currency)},
		{"Status", string(intent.Status)},
		{"Customer", orNotAvailable(intent.Customer)},
		{"Capture Method", orNotAvailable(intent.CaptureMethod)},
		{"Payment Method Types", orNotAvailable(strings.Join(intent.PaymentMethodTypes, ", "))},
		{"Latest Charge", orNotAvailable(intent.LatestCharge)},
		{"Created", formatTimestamp(intent.Created)},
	})
}
