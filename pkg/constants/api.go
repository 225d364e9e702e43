package constants

// HTTP and API constants
const (
	ContentTypeJSON = "application/json"

	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	BearerPrefix = "Bearer "

	ResponseError   = "error"
	ResponseItems   = "items"
	ResponseReport  = "report"
	ResponseSchema  = "schema"
	ResponseMessage = "message"
)

// Context keys
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// Persistence tables for the definition registry
const (
	TableCollections = "_sys_collection_def"
	TableFunctions   = "_sys_function_def"
	TableRBACBundles = "_sys_rbac_def"
)

// Definition kinds as stored in the registry
const (
	KindCollection = "collection"
	KindFunction   = "function"
	KindRBAC       = "rbac"
)
