package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldCustomerID = "customer_id"
	FieldAccountID  = "account_id"
	FieldEmail      = "email"
	FieldRange      = "range"
	FieldFeatures   = "features"
)

// Components defines standard component names
const (
	ComponentAPI      = "api"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentProvider = "provider"
	ComponentLedger   = "ledger"
	ComponentCache    = "cache"
)
