package cache

const (
	// KeyCart is the per-user session cart hash, field = productId,
	// value = quantity.
	KeyCart = "carts:%s"
)
