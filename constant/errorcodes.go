package constant

// Card service error codes
const (
	// Card service - Validation errors (1xx)
	ErrCodeNoCodes          = "SVC101"
	ErrCodeNoTemplate       = "SVC102"
	ErrCodeNoOutputDir      = "SVC103"
	ErrCodeFontSize         = "SVC104"
	ErrCodeUnsafeCode       = "SVC105"
	ErrCodeTemplateDecode   = "SVC106"
	ErrCodeTemplateSize     = "SVC107"
	ErrCodeOutputDirInvalid = "SVC108"

	// Card service - Rendering errors (2xx)
	ErrCodeFontLoad = "SVC201"
	ErrCodeQREncode = "SVC202"

	// Card service - Persistence errors (3xx)
	ErrCodeWriteCard = "SVC301"

	// Card service - History errors (4xx)
	ErrCodeHistoryStart  = "SVC401"
	ErrCodeHistoryFinish = "SVC402"
)

// Database error codes
const (
	// General DB errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Run operation errors (1xx)
	ErrCodeDBInsert = "DB101"
	ErrCodeDBUpdate = "DB102"
	ErrCodeDBList   = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// Error types for categorization
const (
	// Domain error types
	ErrTypeValidation = "validation"
	ErrTypeRender     = "render"
	ErrTypeStorage    = "storage"
	ErrTypeHistory    = "history"

	// Infrastructure error types
	ErrTypeDB = "db"
)
