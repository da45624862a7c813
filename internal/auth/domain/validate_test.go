package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("+94 (77) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", got)

	got, err = NormalizePhone("0771234567")
	require.NoError(t, err)
	assert.Equal(t, "0771234567", got)

	for _, bad := range []string{"", "12345", "077-123-456", "07712345ab", "94+771234567"} {
		_, err := NormalizePhone(bad)
		assert.ErrorIs(t, err, ErrInvalidPhone, bad)
	}
}

func TestValidateOTP(t *testing.T) {
	assert.NoError(t, ValidateOTP("012345"))
	for _, bad := range []string{"", "12345", "1234567", "12a456", "１２３４５６"} {
		assert.ErrorIs(t, ValidateOTP(bad), ErrInvalidOTP, bad)
	}
}
