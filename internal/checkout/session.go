package checkout

// Session is the state of one in-progress checkout: the selected customer
// and the cart being built. It is passed explicitly through the flow instead
// of living in ambient state, and is owned by exactly one caller.
type Session struct {
	CustomerID string
	Cart       *Cart
}

// NewSession returns a session with an empty cart and no customer selected.
func NewSession() *Session {
	return &Session{Cart: NewCart()}
}

// Reset clears the cart and the customer selection, reopening the session
// for a fresh transaction.
func (s *Session) Reset() {
	s.CustomerID = ""
	s.Cart.Clear()
}
