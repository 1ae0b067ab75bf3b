package domain

// Per-item ingestion error codes. Both are non-fatal to the batch.
const (
	CodeDuplicate = "EVT_DUPLICATE"
	CodeDBError   = "EVT_DB_ERROR"
)

// IngestError records why a single event in a batch was rejected.
type IngestError struct {
	Index   int    `json:"index"`
	EventID string `json:"event_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IngestResult summarizes one ingestion batch. A rejected item never fails
// the batch; Accepted+Rejected always equals the input length.
type IngestResult struct {
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Errors   []IngestError `json:"errors"`
}

func (r *IngestResult) Reject(index int, eventID, code, message string) {
	r.Rejected++
	r.Errors = append(r.Errors, IngestError{
		Index:   index,
		EventID: eventID,
		Code:    code,
		Message: message,
	})
}
