package domain

import "strconv"

// Metadata is the open attribute bag attached to an event. Well-known keys are
// read through the typed accessors below; absent or malformed values default
// to zero rather than failing, so aggregate arithmetic stays total.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaTokensInput  = "tokens_input"
	MetaTokensOutput = "tokens_output"
	MetaDurationMS   = "duration_ms"
	MetaErrorCode    = "error_code"
	MetaErrorMessage = "error_message"
	MetaTaskType     = "task_type"
	MetaSuccess      = "success"

	MetaClientName    = "client_name"
	MetaClientVersion = "client_version"
	MetaPlatform      = "platform"
)

func (m Metadata) TokensInput() int64 {
	return m.Int64(MetaTokensInput)
}

func (m Metadata) TokensOutput() int64 {
	return m.Int64(MetaTokensOutput)
}

// DurationMS returns the task duration and whether it was present at all.
// Presence matters: averages must skip events without a duration instead of
// diluting them with zeros.
func (m Metadata) DurationMS() (int64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[MetaDurationMS]
	if !ok || v == nil {
		return 0, false
	}
	return toInt64(v), true
}

func (m Metadata) ErrorCode() string {
	return m.String(MetaErrorCode)
}

func (m Metadata) ErrorMessage() string {
	return m.String(MetaErrorMessage)
}

func (m Metadata) TaskType() string {
	return m.String(MetaTaskType)
}

func (m Metadata) Success() bool {
	if m == nil {
		return false
	}
	b, _ := m[MetaSuccess].(bool)
	return b
}

// Int64 reads a numeric key, coercing the JSON number representations that
// show up in practice. Missing or unusable values are 0.
func (m Metadata) Int64(key string) int64 {
	if m == nil {
		return 0
	}
	return toInt64(m[key])
}

// String reads a string key, empty when missing or not a string.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
