package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"boardstack-api/internal/http/httperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeData wraps a success payload in the standard envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":   true,
		"data": data,
	})
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation, writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	ctx := r.Context()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidBody, "request body must be valid JSON")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "request validation failed", fields)
			return false
		}
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, "request validation failed")
		return false
	}

	return true
}
