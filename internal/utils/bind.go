package utils

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"ewaste-pickup/internal/apperr"
)

var validate = validator.New()

// DecodeAndValidate binds the JSON body into dst and runs its validate tags.
// Any failure is reported as invalid input.
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "request failed validation", err)
	}
	return nil
}
