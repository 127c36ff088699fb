package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

func TestParseSubmissionID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubmissionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSubmissionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSubmissionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseSubmissionID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, SubmissionID(valid), id)
	})
}

// Path parameters arrive straight from the network, so parsing must reject
// anything that is not a well-formed UUID before it reaches a store.
func TestParseID_RejectsHostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE submissions;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"empty string", "", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"whitespace only", "   ", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTenantID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// All three ID types must validate identically; a type with looser parsing
// would be the one attackers reach for.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errTenant := ParseTenantID(valid)
		_, errUser := ParseEndUserID(valid)
		_, errSubmission := ParseSubmissionID(valid)

		require.NoError(t, errTenant)
		require.NoError(t, errUser)
		require.NoError(t, errSubmission)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errTenant := ParseTenantID(input)
			_, errUser := ParseEndUserID(input)
			_, errSubmission := ParseSubmissionID(input)

			require.Error(t, errTenant)
			require.Error(t, errUser)
			require.Error(t, errSubmission)
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.True(t, TenantID{}.IsNil())
	assert.True(t, EndUserID{}.IsNil())
	assert.True(t, SubmissionID{}.IsNil())

	assert.False(t, NewTenantID().IsNil())
	assert.False(t, NewEndUserID().IsNil())
	assert.False(t, NewSubmissionID().IsNil())
}
