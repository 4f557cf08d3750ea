package model

import "time"

// Transfer actions recorded by the journal.
const (
	ActionUpload   = "upload"
	ActionDownload = "download"
	ActionPurge    = "purge"
)

// TransferEvent is one entry of the optional transfer journal.
// It is an audit record only; listing and download never read it.
type TransferEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}
