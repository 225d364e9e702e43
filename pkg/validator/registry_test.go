package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinFormats(t *testing.T) {
	r := GetRegistry()

	tests := []struct {
		format  string
		value   string
		wantErr bool
	}{
		{"date-time", "2024-06-01T12:00:00Z", false},
		{"date-time", "June 1st 2024", true},
		{"objectid", "507f1f77bcf86cd799439011", false},
		{"objectid", "not-hex", true},
		{"email", "ops@example.com", false},
		{"email", "not-an-email", true},
		{"url", "https://example.com/x", false},
		{"url", "ftp://example.com", true},
		{"uuid", "8b1e9a74-3f1c-4a8e-b1d2-9d6a3f2e4c5b", false},
		{"uuid", "nope", true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.value, func(t *testing.T) {
			err := r.Validate(tt.format, tt.value, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnknownFormatPasses(t *testing.T) {
	assert.NoError(t, GetRegistry().Validate("isbn", "whatever", nil))
}

func TestEmptyValuePasses(t *testing.T) {
	// Presence is the required flag's job; formats only constrain content
	r := GetRegistry()
	assert.NoError(t, r.Validate("email", "", nil))
	assert.NoError(t, r.Validate("date-time", "", nil))
}

func TestCustomValidatorRegistration(t *testing.T) {
	r := GetRegistry()
	r.Register("even-length", func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if len(str)%2 != 0 {
			return fmt.Errorf("length must be even")
		}
		return nil
	})

	assert.NoError(t, r.Validate("even-length", "ab", nil))
	assert.Error(t, r.Validate("even-length", "abc", nil))
}
