package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/storefront/storefront/internal/handler/dto"
)

// rejection is a fixed error response issued before a request reaches
// its handler.
type rejection struct {
	status  int
	code    string
	message string
}

var (
	rejectMissingToken     = rejection{http.StatusUnauthorized, "MISSING_TOKEN", "Access denied! No token."}
	rejectInvalidToken     = rejection{http.StatusForbidden, "INVALID_TOKEN", "Access denied!"}
	rejectOriginNotAllowed = rejection{http.StatusForbidden, "ORIGIN_NOT_ALLOWED", "Origin not allowed"}
	rejectPayloadTooLarge  = rejection{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large"}
	rejectPanic            = rejection{http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred"}
)

func reject(w http.ResponseWriter, rj rejection) {
	writeError(w, rj.status, rj.code, rj.message)
}

// writeError writes the {message, code} body shared with the handlers.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Message: message,
		Code:    code,
	})
}
