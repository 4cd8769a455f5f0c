package api

import (
	"time"

	"github.com/pubtunnel/relayd/internal/presence"
	"github.com/pubtunnel/relayd/internal/result"
)

// commandPayload is the wire shape of a queued command.
type commandPayload struct {
	CommandID    string    `json:"command_id"`
	Content      string    `json:"content"`
	TargetClient string    `json:"target_client"`
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type pollResponse struct {
	SessionID          string           `json:"session_id"`
	ClientID           string           `json:"client_id"`
	Commands           []commandPayload `json:"commands"`
	RegistrationStatus string           `json:"registration_status"`
}

type sessionPollRequest struct {
	ClientID string     `json:"client_id"`
	LastSeen *time.Time `json:"last_seen"`
}

type fifoPollResponse struct {
	SessionID      string          `json:"session_id"`
	ClientID       string          `json:"client_id"`
	Command        *commandPayload `json:"command"`
	QueuePosition  int             `json:"queue_position"`
	TotalQueueSize int             `json:"total_queue_size"`
}

type singleCommandResponse struct {
	SessionID       string          `json:"session_id"`
	ClientID        string          `json:"client_id"`
	Command         *commandPayload `json:"command"`
	HasMoreCommands bool            `json:"has_more_commands"`
	QueueSize       int             `json:"queue_size"`
}

type submitCommandRequest struct {
	CommandContent string `json:"command_content"`
	TargetClientID string `json:"target_client_id"`
	TimeoutSeconds *int   `json:"timeout_seconds"`
}

type submitCommandResponse struct {
	CommandID               string        `json:"command_id"`
	ExecutionStatus         result.Status `json:"execution_status"`
	SubmissionTimestamp     time.Time     `json:"submission_timestamp"`
	TargetClientID          string        `json:"target_client_id"`
	EstimatedCompletionTime *time.Time    `json:"estimated_completion_time"`
}

type autoAsyncSubmitResponse struct {
	CommandID           string    `json:"command_id"`
	AsyncMode           bool      `json:"async_mode"`
	Result              *string   `json:"result"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
	TargetClientID      string    `json:"target_client_id"`
}

type commandStatusResponse struct {
	CommandID       string        `json:"command_id"`
	ExecutionStatus result.Status `json:"execution_status"`
	ClientID        string        `json:"client_id"`
	StartedAt       *time.Time    `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at"`
	ResultSummary   *string       `json:"result_summary"`
	ErrorMessage    *string       `json:"error_message"`
}

type resultSubmissionRequest struct {
	CommandID                string        `json:"command_id"`
	ClientID                 string        `json:"client_id"`
	ExecutionStatus          result.Status `json:"execution_status"`
	ResultContent            *string       `json:"result_content"`
	ErrorMessage             *string       `json:"error_message"`
	ExecutionDurationSeconds *int          `json:"execution_duration_seconds"`
	FileReferences           []string      `json:"file_references"`
}

type resultSubmissionResponse struct {
	Status          string        `json:"status"`
	CommandID       string        `json:"command_id"`
	SessionID       string        `json:"session_id"`
	ExecutionStatus result.Status `json:"execution_status"`
}

type errorReportResponse struct {
	CommandID       string        `json:"command_id"`
	SessionID       string        `json:"session_id"`
	ExecutionStatus result.Status `json:"execution_status"`
	Message         string        `json:"message"`
	SubmittedAt     time.Time     `json:"submitted_at"`
}

type historyResponse struct {
	SessionID     string   `json:"session_id"`
	CommandIDs    []string `json:"command_ids"`
	TotalCommands int      `json:"total_commands"`
}

type presenceUpdateRequest struct {
	ClientID          string    `json:"client_id"`
	LastSeenTimestamp time.Time `json:"last_seen_timestamp"`
}

type presenceUpdateResponse struct {
	ClientID          string          `json:"client_id"`
	SessionID         string          `json:"session_id"`
	PreviousStatus    presence.Status `json:"previous_status"`
	CurrentStatus     presence.Status `json:"current_status"`
	LastSeenTimestamp time.Time       `json:"last_seen_timestamp"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type presenceQueryResponse struct {
	ClientID              string          `json:"client_id"`
	SessionID             string          `json:"session_id"`
	PresenceStatus        presence.Status `json:"presence_status"`
	LastSeenTimestamp     *time.Time      `json:"last_seen_timestamp"`
	OnlineDurationSeconds *int64          `json:"online_duration_seconds"`
}

type offlineCheckResponse struct {
	CheckedClientsCount        int       `json:"checked_clients_count"`
	NewlyOfflineClientsCount   int       `json:"newly_offline_clients_count"`
	AlreadyOfflineClientsCount int       `json:"already_offline_clients_count"`
	SessionID                  *string   `json:"session_id"`
	CheckTimestamp             time.Time `json:"check_timestamp"`
}

type clientOfflineStatusInfo struct {
	ClientID                string          `json:"client_id"`
	SessionID               string          `json:"session_id"`
	PresenceStatus          presence.Status `json:"presence_status"`
	LastSeenTimestamp       time.Time       `json:"last_seen_timestamp"`
	SecondsSinceLastSeen    int64           `json:"seconds_since_last_seen"`
	OfflineThresholdSeconds int             `json:"offline_threshold_seconds"`
	EligibleForCommands     bool            `json:"is_eligible_for_commands"`
	WentOfflineAt           *time.Time      `json:"went_offline_at"`
}

type thresholdConfigResponse struct {
	OfflineThresholdSeconds   int `json:"offline_threshold_seconds"`
	StaleCleanupWindowSeconds int `json:"stale_cleanup_window_seconds"`
}

type thresholdUpdateRequest struct {
	OfflineThresholdSeconds int `json:"offline_threshold_seconds"`
}

type thresholdUpdateResponse struct {
	PreviousThresholdSeconds int       `json:"previous_threshold_seconds"`
	CurrentThresholdSeconds  int       `json:"current_threshold_seconds"`
	UpdatedAt                time.Time `json:"updated_at"`
	AffectedSessionsCount    int       `json:"affected_sessions_count"`
}

type sessionInfo struct {
	SessionID      string    `json:"session_id"`
	ClientCount    int       `json:"client_count"`
	CreatedAt      time.Time `json:"created_at"`
	DefaultSession bool      `json:"default_session"`
}

type adminSessionListResponse struct {
	Sessions      []sessionInfo `json:"sessions"`
	TotalSessions int           `json:"total_sessions"`
	QueriedAt     time.Time     `json:"queried_at"`
}

type fileUploadRequest struct {
	FileName          string `json:"file_name"`
	FileContentBase64 string `json:"file_content_base64"`
	ContentType       string `json:"content_type"`
	FileSummary       string `json:"file_summary"`
}

type fileUploadResponse struct {
	FileID          string    `json:"file_id"`
	FileName        string    `json:"file_name"`
	SessionID       string    `json:"session_id"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	FileSizeBytes   int64     `json:"file_size_bytes"`
	ContentType     string    `json:"content_type"`
	FileSummary     string    `json:"file_summary"`
}

type fileDownloadResponse struct {
	FileID            string    `json:"file_id"`
	FileName          string    `json:"file_name"`
	FileContentBase64 string    `json:"file_content_base64"`
	ContentType       string    `json:"content_type"`
	FileSizeBytes     int64     `json:"file_size_bytes"`
	UploadTimestamp   time.Time `json:"upload_timestamp"`
	FileSummary       string    `json:"file_summary"`
}

type fileMetadata struct {
	FileID          string    `json:"file_id"`
	FileName        string    `json:"file_name"`
	ContentType     string    `json:"content_type"`
	FileSizeBytes   int64     `json:"file_size_bytes"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	FileSummary     string    `json:"file_summary"`
}

type sessionFileListResponse struct {
	SessionID  string         `json:"session_id"`
	TotalFiles int            `json:"total_files"`
	Files      []fileMetadata `json:"files"`
}

type fileAccessValidationResponse struct {
	SessionID     string `json:"session_id"`
	FileID        string `json:"file_id"`
	AccessGranted bool   `json:"access_granted"`
}

type resultFileUploadRequest struct {
	CommandID                string              `json:"command_id"`
	ClientID                 string              `json:"client_id"`
	ExecutionStatus          result.Status       `json:"execution_status"`
	ResultContent            *string             `json:"result_content"`
	ErrorMessage             *string             `json:"error_message"`
	ExecutionDurationSeconds *int                `json:"execution_duration_seconds"`
	ResultFiles              []fileUploadRequest `json:"result_files"`
}

type resultFileUploadResponse struct {
	CommandID       string               `json:"command_id"`
	SessionID       string               `json:"session_id"`
	ExecutionStatus result.Status        `json:"execution_status"`
	SubmittedAt     time.Time            `json:"submitted_at"`
	FileReferences  []string             `json:"file_references"`
	UploadedFiles   []fileUploadResponse `json:"uploaded_files"`
}
