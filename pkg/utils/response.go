package utils

import (
	"encoding/json"
	"log"
	"net/http"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code,omitempty"`
	Hints []string `json:"hints,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErr maps a marked domain error to its status code and writes the
// first hint (or the error text) as the message.
func RespondErr(w http.ResponseWriter, err error) {
	hints := ierr.HintsFromErr(err)
	message := err.Error()
	if len(hints) > 0 {
		message = hints[0]
	}
	RespondJSON(w, ierr.HTTPStatusFromErr(err), ErrorResponse{
		Error: message,
		Code:  ierr.CodeFromErr(err),
		Hints: hints,
	})
}
