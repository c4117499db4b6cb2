package cache

import "time"

const (
	// KeyProduct caches a single catalog product as JSON.
	KeyProduct = "products:%s"

	// ProductTTL keeps stale prices bounded, carts are always re-priced
	// from the database at checkout anyway.
	ProductTTL = time.Hour
)
