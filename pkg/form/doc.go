// Package form serializes Stripe request parameters into the flat
// application/x-www-form-urlencoded representation the API expects.
//
// Nested values use the bracketed path convention:
//
//	metadata[order_id]=42
//	items[0][price]=price_123
//	expand[]=
//
// Structs encode as mappings over their exported fields in declaration order.
// The key comes from the `form:"name"` tag and defaults to the snake_case field
// name. Pointers, interfaces and unset Nullable values that are nil encode to
// nothing, which keeps "absent" distinct from "present and empty": an empty,
// non-nil slice encodes as a single `key[]=` pair and Nullable.SetNull encodes
// as `key=`.
//
// Go maps have no insertion order, so their keys are emitted in sorted order.
// Use Map when the caller needs a specific key order.
package form
