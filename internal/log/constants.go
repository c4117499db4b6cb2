package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyEmail         = "email"
	KeyToken         = "token"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyPathValues    = "pathValues"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbURL"

	KeyUserID            = "userId"
	KeyProductID         = "productId"
	KeyOrderID           = "orderId"
	KeyCheckoutSessionID = "checkoutSessionId"
	KeyGatewaySessionID  = "gatewaySessionId"
	KeyQuantity          = "quantity"
	KeyCart              = "cart"
	KeyCartItems         = "cartItems"
	KeyManifest          = "manifest"
	KeyTotalMinor        = "totalMinor"
	KeyOrder             = "order"
	KeyOrders            = "orders"
	KeyOrderStatus       = "orderStatus"
	KeyProduct           = "product"
	KeyProducts          = "products"
)
