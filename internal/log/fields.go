package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldClientID  = "client_id"
	FieldCommandID = "command_id"
	FieldFileID    = "file_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// State fields
	FieldOldStatus = "old_status"
	FieldNewStatus = "new_status"
	FieldQueueSize = "queue_size"
	FieldThreshold = "threshold_seconds"
)
