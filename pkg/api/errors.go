package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/leveler/pkg/store"

	errs "github.com/matzehuels/leveler/pkg/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error to its HTTP status: caller mistakes in the project
// are 422, missing documents 404, everything else 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errs.Is(err, errs.ErrCodeNotFound):
		return http.StatusNotFound
	case errs.IsInputError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound(format string, args ...any) error {
	return errs.New(errs.ErrCodeNotFound, format, args...)
}

// writeError writes err as {"code","message"}. Internal errors do not leak
// their cause.
func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := errorBody{Code: string(errs.GetCode(err)), Message: errs.UserMessage(err)}
	switch {
	case status == http.StatusNotFound && body.Code == "":
		body.Code = string(errs.ErrCodeNotFound)
		body.Message = err.Error()
	case status == http.StatusInternalServerError:
		body.Code = string(errs.ErrCodeInternal)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
