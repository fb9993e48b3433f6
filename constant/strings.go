package constant

type contextKey string

// Request context keys
const (
	RequestIDKey contextKey = "request_id"
	RunIDKey     contextKey = "run_id"
)

// HTTP header names
const (
	HeaderRequestID = "X-Request-ID"
)

// Card geometry and payload
const (
	CanvasWidth  = 1050
	CanvasHeight = 600

	LabelAnchorX = 524
	LabelAnchorY = 530

	MinFontSize     = 10
	MaxFontSize     = 50
	DefaultFontSize = 40

	QRModuleSize = 10

	RedemptionURLPrefix = "https://store.pokemongolive.com/offer-redemption?passcode="
	CardExtension       = ".png"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain   = "domain"
	CtxGenerate = "Generate"
	CtxValidate = "Validate"

	// Infrastructure context names
	CtxDB       = "db"
	CtxStartRun = "StartRun"
	CtxFinish   = "FinishRun"
	CtxListRuns = "ListRuns"
	CtxClose    = "Close"
	CtxTypeface = "typeface"
	CtxStorage  = "storage"
	CtxAPI      = "api"

	// General context names
	CtxRouter      = "Router"
	CtxMain        = "Main"
	CtxCreateBatch = "CreateBatch"
	CtxQRCode      = "QRCode"
	CtxRuns        = "ListRunsHandler"
	CtxCLI         = "cli"
)

// Data field keys
const (
	// Service data fields
	DataService   = "service"
	DataRunID     = "run_id"
	DataCode      = "code"
	DataTemplate  = "template"
	DataOutputDir = "output_dir"
	DataFontSize  = "font_size"
	DataFontPath  = "font_path"
	DataTotal     = "total"
	DataFile      = "file"
	DataWidth     = "width"
	DataHeight    = "height"

	// Database data fields
	DataPath         = "path"
	DataElapsed      = "elapsed"
	DataRows         = "rows"
	DataSQL          = "sql"
	DataData         = "data"
	DataRowsAffected = "rows_affected"

	// API data fields
	DataMethod      = "method"
	DataStatus      = "status"
	DataLatency     = "latency"
	DataSize        = "size"
	DataRemoteAddr  = "remote_addr"
	DataUserAgent   = "user_agent"
	DataPort        = "port"
	DataDBPath      = "db_path"
	DataEnvironment = "environment"
)

// Error message constants
const (
	ErrNoCodes          = "Please enter at least one code."
	ErrNoTemplate       = "Base image not selected."
	ErrNoOutputDir      = "Output folder not selected."
	ErrFontSize         = "Font size must be between 10 and 50."
	ErrUnsafeCode       = "Code cannot be used as a file name"
	ErrTemplateDecode   = "Base image could not be read"
	ErrTemplateSize     = "Base image must be 1050 x 600 pixels."
	ErrOutputDirInvalid = "Output folder is not a writable directory"
	ErrFontLoad         = "Font could not be loaded"
	ErrHistoryDisabled  = "run history is disabled"
)

// Error codes
const (
	ErrCodeAPIDecodeRequest  = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAPIQRCode         = "API003"
	ErrCodeAPIRuns           = "API004"
	ErrCodeAppDBInit         = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
	ErrCodeAppGenerate       = "APP004"
)

// Error types
const (
	ErrTypeDomain = "domain"
	ErrTypeAPI    = "api"
	ErrTypeApp    = "application"
)

// API routes
const (
	RouteCreateBatch = "/api/batches"
	RouteQRCode      = "/api/qr/{code}"
	RouteRuns        = "/api/runs"
	RouteHealthcheck = "/health"
)

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogRunIDKey        = "run_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStdout    = "stdout"
	LogOutputStderr    = "stderr"
)

// Message constants for application
const (
	MsgApplicationStarting   = "Application starting"
	MsgFailedToInitDB        = "Failed to initialize run history"
	MsgServerStarting        = "Server starting"
	MsgServerFailedToStart   = "Server failed to start"
	MsgServerShuttingDown    = "Server shutting down"
	MsgServerShutdownError   = "Error during server shutdown"
	MsgServerStopped         = "Server stopped"
	MsgRequestReceived       = "Request received"
	MsgRequestCompleted      = "Request completed"
	MsgSettingUpRoutes       = "Setting up API routes"
	MsgHealthcheckRequest    = "Handling healthcheck request"
	MsgHealthy               = "Healthy"
	MsgGenerationSucceeded   = "Images generated successfully."
	MsgHandlingBatchRequest  = "Handling batch generation request"
	MsgHandlingQRCodeRequest = "Handling QR code request"
)

// Cache namespaces
const (
	FontNamespace = "FONT"
	QRNamespace   = "QR"
)
