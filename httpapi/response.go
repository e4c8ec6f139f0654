package httpapi

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the standard response envelope.
type JSONResponse struct {
	Code  string       `json:"code,omitempty"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries machine-readable error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, code string, data any) {
	respondJSON(w, http.StatusOK, JSONResponse{Code: code, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, JSONResponse{
		Code:  code,
		Error: &ErrorDetail{Code: code, Message: message},
	})
}

// respondDenial answers a well-formed request the billing rules refuse:
// quota exhausted or billing period lapsed. These are expected outcomes,
// not server errors, and carry the current snapshot so the UI can explain.
func respondDenial(w http.ResponseWriter, code string, data any) {
	respondJSON(w, http.StatusPaymentRequired, JSONResponse{
		Code:  code,
		Data:  data,
		Error: &ErrorDetail{Code: code},
	})
}
