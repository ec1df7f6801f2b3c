package wallet

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"checksummed token contract", "0x55d398326f99059fF775485246999027B3197955", true},
		{"all lower case", "0x55d398326f99059ff775485246999027b3197955", true},
		{"all upper case", "0x55D398326F99059FF775485246999027B3197955", true},
		{"eip55 vector", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"mixed case without checksum", "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"one letter case flipped", "0x55d398326f99059fF775485246999027b3197955", true},
		{"too short", "0x123", false},
		{"missing prefix", "55d398326f99059ff775485246999027b3197955", false},
		{"non hex", "0xZZd398326f99059ff775485246999027b3197955", false},
		{"too long", "0x55d398326f99059ff775485246999027b319795500", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAddress(tt.address))
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	got, err := ChecksumAddress("0x55d398326f99059ff775485246999027b3197955")
	require.NoError(t, err)
	assert.Equal(t, "0x55d398326f99059fF775485246999027B3197955", got)

	got, err = ChecksumAddress("0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	_, err = ChecksumAddress("0x123")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestRegisterValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidation(v))

	type request struct {
		Address string `validate:"required,bscaddr"`
	}
	assert.NoError(t, v.Struct(request{Address: "0x55d398326f99059ff775485246999027b3197955"}))
	assert.Error(t, v.Struct(request{Address: "0x123"}))
}
