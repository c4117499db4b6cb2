package cache

const (
	// KeyCheckoutToken guards a user against overlapping checkouts. The
	// value is the checkout session id that holds the token.
	KeyCheckoutToken = "checkout:token:%s"
)
