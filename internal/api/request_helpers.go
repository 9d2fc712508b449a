package api

import (
	"net/http"

	"github.com/phrazzld/baike-api/internal/api/shared"
)

// decodeAndValidate decodes the JSON body into v and validates it, writing
// the error response itself when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}
