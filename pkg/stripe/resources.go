package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrUnknownSourceObject = errors.New("stripe: unknown payment source object")
)

// Address is a postal address.
type Address struct {
	Line1      string `json:"line1,omitempty"       yaml:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"       yaml:"line2,omitempty"`
	City       string `json:"city,omitempty"        yaml:"city,omitempty"`
	State      string `json:"state,omitempty"       yaml:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"     yaml:"country,omitempty"`
}

// Customer represents a Stripe customer.
type Customer struct {
	ID          string            `json:"id"                    yaml:"id"`
	Object      string            `json:"object"                yaml:"object"`
	Email       string            `json:"email,omitempty"       yaml:"email,omitempty"`
	Name        string            `json:"name,omitempty"        yaml:"name,omitempty"`
	Phone       string            `json:"phone,omitempty"       yaml:"phone,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Balance     int64             `json:"balance"               yaml:"balance"`
	Currency    string            `json:"currency,omitempty"    yaml:"currency,omitempty"`
	Delinquent  bool              `json:"delinquent"            yaml:"delinquent"`
	Address     *Address          `json:"address,omitempty"     yaml:"address,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
	Created     int64             `json:"created"               yaml:"created"`
	Livemode    bool              `json:"livemode"              yaml:"livemode"`
}

// GetID implements Identifiable.
func (c Customer) GetID() string {
	return c.ID
}

// Card is a card payment source.
type Card struct {
	ID       string `json:"id"                 yaml:"id"`
	Object   string `json:"object"             yaml:"object"`
	Brand    string `json:"brand,omitempty"    yaml:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"    yaml:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month"          yaml:"exp_month"`
	ExpYear  int64  `json:"exp_year"           yaml:"exp_year"`
	Funding  string `json:"funding,omitempty"  yaml:"funding,omitempty"`
	Country  string `json:"country,omitempty"  yaml:"country,omitempty"`
	Customer string `json:"customer,omitempty" yaml:"customer,omitempty"`
}

// BankAccount is a bank account payment source.
type BankAccount struct {
	ID                string `json:"id"                            yaml:"id"`
	Object            string `json:"object"                        yaml:"object"`
	BankName          string `json:"bank_name,omitempty"           yaml:"bank_name,omitempty"`
	Last4             string `json:"last4,omitempty"               yaml:"last4,omitempty"`
	RoutingNumber     string `json:"routing_number,omitempty"      yaml:"routing_number,omitempty"`
	Country           string `json:"country,omitempty"             yaml:"country,omitempty"`
	Currency          string `json:"currency,omitempty"            yaml:"currency,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty" yaml:"account_holder_name,omitempty"`
	Status            string `json:"status,omitempty"              yaml:"status,omitempty"`
}

// Payment source object discriminants.
const (
	ObjectCard        = "card"
	ObjectBankAccount = "bank_account"
)

// PaymentSource is a union over the source objects a charge can reference.
// Exactly one of Card and BankAccount is set after decoding.
type PaymentSource struct {
	Object      string       `json:"object"                 yaml:"object"`
	Card        *Card        `json:"card,omitempty"         yaml:"card,omitempty"`
	BankAccount *BankAccount `json:"bank_account,omitempty" yaml:"bank_account,omitempty"`
}

// GetID returns the id of the underlying source.
func (s PaymentSource) GetID() string {
	switch {
	case s.Card != nil:
		return s.Card.ID
	case s.BankAccount != nil:
		return s.BankAccount.ID
	default:
		return ""
	}
}

// UnmarshalJSON reads the object discriminant first and decodes into the
// matching variant.
func (s *PaymentSource) UnmarshalJSON(data []byte) error {
	var head struct {
		Object string `json:"object"`
	}

	err := json.Unmarshal(data, &head)
	if err != nil {
		return fmt.Errorf("failed to read payment source object: %w", err)
	}

	*s = PaymentSource{Object: head.Object}

	switch head.Object {
	case ObjectCard:
		s.Card = &Card{}

		return json.Unmarshal(data, s.Card)
	case ObjectBankAccount:
		s.BankAccount = &BankAccount{}

		return json.Unmarshal(data, s.BankAccount)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSourceObject, head.Object)
	}
}

// MarshalJSON writes the variant that is set.
func (s PaymentSource) MarshalJSON() ([]byte, error) {
	switch {
	case s.Card != nil:
		return json.Marshal(s.Card)
	case s.BankAccount != nil:
		return json.Marshal(s.BankAccount)
	default:
		return []byte("null"), nil
	}
}

// Outcome describes the result of a charge's risk evaluation.
type Outcome struct {
	NetworkStatus string `json:"network_status,omitempty" yaml:"network_status,omitempty"`
	Reason        string `json:"reason,omitempty"         yaml:"reason,omitempty"`
	RiskLevel     string `json:"risk_level,omitempty"     yaml:"risk_level,omitempty"`
	SellerMessage string `json:"seller_message,omitempty" yaml:"seller_message,omitempty"`
	Type          string `json:"type,omitempty"           yaml:"type,omitempty"`
}

// Charge represents a Stripe charge.
type Charge struct {
	ID             string            `json:"id"                        yaml:"id"`
	Object         string            `json:"object"                    yaml:"object"`
	Amount         int64             `json:"amount"                    yaml:"amount"`
	AmountCaptured int64             `json:"amount_captured"           yaml:"amount_captured"`
	AmountRefunded int64             `json:"amount_refunded"           yaml:"amount_refunded"`
	Currency       string            `json:"currency"                  yaml:"currency"`
	Captured       bool              `json:"captured"                  yaml:"captured"`
	Paid           bool              `json:"paid"                      yaml:"paid"`
	Refunded       bool              `json:"refunded"                  yaml:"refunded"`
	Status         string            `json:"status"                    yaml:"status"`
	Customer       string            `json:"customer,omitempty"        yaml:"customer,omitempty"`
	Description    string            `json:"description,omitempty"     yaml:"description,omitempty"`
	FailureCode    string            `json:"failure_code,omitempty"    yaml:"failure_code,omitempty"`
	FailureMessage string            `json:"failure_message,omitempty" yaml:"failure_message,omitempty"`
	PaymentIntent  string            `json:"payment_intent,omitempty"  yaml:"payment_intent,omitempty"`
	Source         *PaymentSource    `json:"source,omitempty"          yaml:"source,omitempty"`
	Outcome        *Outcome          `json:"outcome,omitempty"         yaml:"outcome,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"        yaml:"metadata,omitempty"`
	Created        int64             `json:"created"                   yaml:"created"`
	Livemode       bool              `json:"livemode"                  yaml:"livemode"`
}

// GetID implements Identifiable.
func (c Charge) GetID() string {
	return c.ID
}

// PaymentIntentStatus is the lifecycle state of a payment intent.
type PaymentIntentStatus string

// Payment intent states.
const (
	PaymentIntentStatusRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	PaymentIntentStatusRequiresConfirmation  PaymentIntentStatus = "requires_confirmation"
	PaymentIntentStatusRequiresAction        PaymentIntentStatus = "requires_action"
	PaymentIntentStatusProcessing            PaymentIntentStatus = "processing"
	PaymentIntentStatusRequiresCapture       PaymentIntentStatus = "requires_capture"
	PaymentIntentStatusCanceled              PaymentIntentStatus = "canceled"
	PaymentIntentStatusSucceeded             PaymentIntentStatus = "succeeded"
)

// PaymentIntent represents a Stripe payment intent.
type PaymentIntent struct {
	ID                 string              `json:"id"                             yaml:"id"`
	Object             string              `json:"object"                         yaml:"object"`
	Amount             int64               `json:"amount"                         yaml:"amount"`
	AmountReceived     int64               `json:"amount_received"                yaml:"amount_received"`
	Currency           string              `json:"currency"                       yaml:"currency"`
	Status             PaymentIntentStatus `json:"status"                         yaml:"status"`
	ClientSecret       string              `json:"client_secret,omitempty"        yaml:"-"`
	Customer           string              `json:"customer,omitempty"             yaml:"customer,omitempty"`
	Description        string              `json:"description,omitempty"          yaml:"description,omitempty"`
	CaptureMethod      string              `json:"capture_method,omitempty"       yaml:"capture_method,omitempty"`
	PaymentMethodTypes []string            `json:"payment_method_types,omitempty" yaml:"payment_method_types,omitempty"`
	LatestCharge       string              `json:"latest_charge,omitempty"        yaml:"latest_charge,omitempty"`
	Metadata           map[string]string   `json:"metadata,omitempty"             yaml:"metadata,omitempty"`
	Created            int64               `json:"created"                        yaml:"created"`
	Livemode           bool                `json:"livemode"                       yaml:"livemode"`
}

// GetID implements Identifiable.
func (p PaymentIntent) GetID() string {
	return p.ID
}

// DeletedObject is returned by delete endpoints.
type DeletedObject struct {
	ID      string `json:"id"      yaml:"id"`
	Object  string `json:"object"  yaml:"object"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

// CustomerParams are the parameters of customer create and update.
type CustomerParams struct {
	Email       *string           `form:"email"`
	Name        *string           `form:"name"`
	Phone       *string           `form:"phone"`
	Description *string           `form:"description"`
	Address     *AddressParams    `form:"address"`
	Metadata    map[string]string `form:"metadata"`
	Expand      []string          `form:"expand"`
}

// AddressParams is the address shape accepted by create endpoints.
type AddressParams struct {
	Line1      *string `form:"line1"`
	Line2      *string `form:"line2"`
	City       *string `form:"city"`
	State      *string `form:"state"`
	PostalCode *string `form:"postal_code"`
	Country    *string `form:"country"`
}

// CustomerListParams filters the customer list.
type CustomerListParams struct {
	ListParams

	Email *string `form:"email"`
}

// ChargeParams are the parameters of charge creation.
type ChargeParams struct {
	Amount              *int64            `form:"amount"`
	Currency            *string           `form:"currency"`
	Customer            *string           `form:"customer"`
	Source              *string           `form:"source"`
	Description         *string           `form:"description"`
	Capture             *bool             `form:"capture"`
	ReceiptEmail        *string           `form:"receipt_email"`
	StatementDescriptor *string           `form:"statement_descriptor"`
	Metadata            map[string]string `form:"metadata"`
	Expand              []string          `form:"expand"`
}

// ChargeListParams filters the charge list.
type ChargeListParams struct {
	ListParams

	Customer      *string `form:"customer"`
	PaymentIntent *string `form:"payment_intent"`
}

// PaymentIntentParams are the parameters of payment intent creation.
type PaymentIntentParams struct {
	Amount             *int64            `form:"amount"`
	Currency           *string           `form:"currency"`
	Customer           *string           `form:"customer"`
	Description        *string           `form:"description"`
	CaptureMethod      *string           `form:"capture_method"`
	Confirm            *bool             `form:"confirm"`
	PaymentMethod      *string           `form:"payment_method"`
	PaymentMethodTypes []string          `form:"payment_method_types"`
	Metadata           map[string]string `form:"metadata"`
	Expand             []string          `form:"expand"`
}
