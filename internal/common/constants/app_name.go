package constants

const (
	AppStoreService = "store-service"
	AudienceUser    = "audience-user"
)
