package checkout

import (
	"errors"
	"fmt"
)

// Validation errors. All of them are detected before any write and block the
// checkout entirely.
var (
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrExceedsStock       = errors.New("quantity exceeds available stock")
	ErrNoCustomerSelected = errors.New("no customer selected")
	ErrEmptyCart          = errors.New("cart is empty")
)

// CheckoutError wraps a persistence failure from the sale recorder or the
// catalog store. It can occur after the sale record is written; applied
// stock decrements are not rolled back.
type CheckoutError struct {
	Stage string
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at %s: %v", e.Stage, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}
