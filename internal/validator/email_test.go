package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@sub.domain.co.in", true},
		{"USER@EXAMPLE.COM", true},
		{"  john@example.com\t", true},
		{"a_b%c-d@host-1.io", true},
		{"user@.com", false},
		{"@example.com", false},
		{"userexample.com", false},
		{"user@com", false},
		{"user@example.c", false},
		{"user@example.c0m", false},
		{"jane.com", false},
		{"a b@example.com", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.field))
		})
	}
}
