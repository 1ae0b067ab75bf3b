package domain

import "testing"

func TestMetadataInt64Coercion(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int64
	}{
		{"int64", int64(42), 42},
		{"int", 42, 42},
		{"json float", float64(42), 42},
		{"numeric string", "42", 42},
		{"garbage string", "not-a-number", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Metadata{"tokens_input": tt.value}
			assertEqual(t, "TokensInput", tt.expected, m.TokensInput())
		})
	}
}

func TestMetadataMissingKeys(t *testing.T) {
	var nilMeta Metadata

	assertEqual(t, "nil TokensInput", int64(0), nilMeta.TokensInput())
	assertEqual(t, "nil ErrorCode", "", nilMeta.ErrorCode())
	assertEqual(t, "nil Success", false, nilMeta.Success())

	_, ok := nilMeta.DurationMS()
	assertEqual(t, "nil DurationMS present", false, ok)

	empty := Metadata{}
	_, ok = empty.DurationMS()
	assertEqual(t, "empty DurationMS present", false, ok)
}

func TestMetadataDurationPresence(t *testing.T) {
	m := Metadata{"duration_ms": float64(1500)}
	ms, ok := m.DurationMS()
	assertEqual(t, "present", true, ok)
	assertEqual(t, "value", int64(1500), ms)

	zero := Metadata{"duration_ms": float64(0)}
	ms, ok = zero.DurationMS()
	assertEqual(t, "zero is present", true, ok)
	assertEqual(t, "zero value", int64(0), ms)
}

func TestMetadataStringAccessors(t *testing.T) {
	m := Metadata{
		"error_code":    "E_RATE_LIMIT",
		"error_message": "too many requests",
		"task_type":     "code_review",
		"success":       true,
	}

	assertEqual(t, "ErrorCode", "E_RATE_LIMIT", m.ErrorCode())
	assertEqual(t, "ErrorMessage", "too many requests", m.ErrorMessage())
	assertEqual(t, "TaskType", "code_review", m.TaskType())
	assertEqual(t, "Success", true, m.Success())
}
