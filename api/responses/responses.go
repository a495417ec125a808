package responses

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/types"
)

// WriteSuccess writes a JSON success envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError maps an error onto the JSON error envelope. Unknown error types
// collapse to the internal-error shape so nothing accidental leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := pkgerrors.CodeInternal
	var details any
	message := ""

	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
		message = typed.Message()
		details = typed.Details()
	}

	meta := pkgerrors.MetadataFor(code)
	if message == "" {
		message = meta.PublicMessage
	}
	if !meta.DetailsAllowed {
		details = nil
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(code),
			Message: message,
			Details: details,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
