package respond

import (
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"strconv"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Message writes a 200 {"message": msg} confirmation.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, messageBody{Message: msg})
}

// RequireJSON rejects the request with 415 and msg unless the body is
// declared as application/json. It reports whether the handler may go on.
func RequireJSON(w http.ResponseWriter, r *http.Request, msg string) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		Error(w, http.StatusUnsupportedMediaType, msg)
		return false
	}
	return true
}

// Decode reads the JSON body into v, answering 400 on malformed input.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

// PathID parses the named path value. ok is false for anything that is not
// an integer; such an id can never match a row.
func PathID(r *http.Request, name string) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}
