package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateClaims rejects tokens that are well signed but carry no usable identity.
func ValidateClaims(claims CustomClaims) error {
	return validate.Struct(claims)
}
