package stripe

import (
	"net/url"
)

// Resource paths.
const (
	pathCustomers      = "/v1/customers"
	pathCharges        = "/v1/charges"
	pathPaymentIntents = "/v1/payment_intents"
)

func objectPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// RetrieveCustomer builds GET /v1/customers/{id}.
func RetrieveCustomer(id string) *Request[Customer] {
	return NewRequest[Customer](MethodGet, objectPath(pathCustomers, id), nil)
}

// CreateCustomer builds POST /v1/customers.
func CreateCustomer(params *CustomerParams) *Request[Customer] {
	return NewRequest[Customer](MethodPost, pathCustomers, params)
}

// UpdateCustomer builds POST /v1/customers/{id}.
func UpdateCustomer(id string, params *CustomerParams) *Request[Customer] {
	return NewRequest[Customer](MethodPost, objectPath(pathCustomers, id), params)
}

// DeleteCustomer builds DELETE /v1/customers/{id}.
func DeleteCustomer(id string) *Request[DeletedObject] {
	return NewRequest[DeletedObject](MethodDelete, objectPath(pathCustomers, id), nil)
}

// ListCustomers builds GET /v1/customers. Wrap it in NewListPaginator to walk
// every page.
func ListCustomers(params *CustomerListParams) *Request[Envelope[Customer]] {
	return NewRequest[Envelope[Customer]](MethodGet, pathCustomers, params)
}

// CreateCharge builds POST /v1/charges.
func CreateCharge(params *ChargeParams) *Request[Charge] {
	return NewRequest[Charge](MethodPost, pathCharges, params)
}

// RetrieveCharge builds GET /v1/charges/{id}.
func RetrieveCharge(id string) *Request[Charge] {
	return NewRequest[Charge](MethodGet, objectPath(pathCharges, id), nil)
}

// ListCharges builds GET /v1/charges.
func ListCharges(params *ChargeListParams) *Request[Envelope[Charge]] {
	return NewRequest[Envelope[Charge]](MethodGet, pathCharges, params)
}

// CreatePaymentIntent builds POST /v1/payment_intents.
func CreatePaymentIntent(params *PaymentIntentParams) *Request[PaymentIntent] {
	return NewRequest[PaymentIntent](MethodPost, pathPaymentIntents, params)
}

// RetrievePaymentIntent builds GET /v1/payment_intents/{id}.
func RetrievePaymentIntent(id string) *Request[PaymentIntent] {
	return NewRequest[PaymentIntent](MethodGet, objectPath(pathPaymentIntents, id), nil)
}

// ListPaymentIntents builds GET /v1/payment_intents.
func ListPaymentIntents(params *ListParams) *Request[Envelope[PaymentIntent]] {
	return NewRequest[Envelope[PaymentIntent]](MethodGet, pathPaymentIntents, params)
}
