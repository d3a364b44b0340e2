package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldSuccess       = "success"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldTxType        = "transaction_type"
	FieldTxDate        = "transaction_date"
	FieldListSize      = "list_size"
	FieldLoadSeq       = "load_seq"
	FieldMethod        = "method"
	FieldURL           = "url"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldBackend       = "backend"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentRepository = "repository"
	ComponentForm       = "form"
	ComponentAuth       = "auth"
	ComponentProfile    = "profile"
	ComponentRemote     = "remote"
	ComponentAMQP       = "amqp"
	ComponentBackend    = "backend"
	ComponentStorage    = "storage"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSubmit   = "submit"
	OpSignIn   = "sign_in"
	OpSignOut  = "sign_out"
	OpUpload   = "upload"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
