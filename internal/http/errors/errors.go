package errors

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status. Encoding failures are logged; the
// status line has already gone out by then.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LogError(r, "encode response", err)
	}
}

// Internal logs err with the request id and answers with a generic 500 body.
func Internal(w http.ResponseWriter, r *http.Request, err error, message string) {
	LogError(r, message, err)
	JSON(w, r, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// BadRequest logs err and answers 400 with the client-safe message.
func BadRequest(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	LogWarn(r, "bad request", err)
	JSON(w, r, http.StatusBadRequest, errorBody{Error: clientMessage})
}

// NotFound answers 404 with a JSON body.
func NotFound(w http.ResponseWriter, r *http.Request, clientMessage string) {
	JSON(w, r, http.StatusNotFound, errorBody{Error: clientMessage})
}

// LogError logs message and err tagged with the chi request id.
func LogError(r *http.Request, message string, err error) {
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		log.Printf("[ERROR] RequestID=%s: %s: %v", requestID, message, err)
	} else {
		log.Printf("[ERROR] %s: %v", message, err)
	}
}

// LogWarn logs message and err tagged with the chi request id.
func LogWarn(r *http.Request, message string, err error) {
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		log.Printf("[WARN] RequestID=%s: %s: %v", requestID, message, err)
	} else {
		log.Printf("[WARN] %s: %v", message, err)
	}
}
