package wallet

import (
	"errors"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// AddressValidationTag is the struct tag registered with the request validator.
const AddressValidationTag = "bscaddr"

var (
	ErrInvalidAddress = errors.New("invalid wallet address")

	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// ValidateAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Letter case is not checked; any 40-hex body normalises to its EIP-55 form.
func ValidateAddress(s string) bool {
	return addressPattern.MatchString(s) && common.IsHexAddress(s)
}

// ChecksumAddress returns the EIP-55 form of a valid address.
func ChecksumAddress(s string) (string, error) {
	if !ValidateAddress(s) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(s).Hex(), nil
}

// RegisterValidation adds the address tag to a validator instance.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(AddressValidationTag, func(fl validator.FieldLevel) bool {
		return ValidateAddress(fl.Field().String())
	})
}
