package respond

import (
	"errors"
	"log"
	"net/http"

	"tasklist/internals/storage"
)

// Session checks out a storage session for the request. On failure it has
// already answered 500 and returns false.
func Session(w http.ResponseWriter, r *http.Request, store *storage.Storage) (*storage.Session, bool) {
	sess, err := store.Session(r.Context())
	if err != nil {
		log.Printf("Error acquiring session for %s %s: %v", r.Method, r.URL.Path, err)
		Error(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return sess, true
}

// StoreError answers a failed storage call. notFound is used for
// storage.ErrNotFound.
func StoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrDuplicate):
		Error(w, http.StatusConflict, "Record already exists")
	case errors.Is(err, storage.ErrConstraint):
		Error(w, http.StatusBadRequest, "Missing or invalid field")
	default:
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		Error(w, http.StatusInternalServerError, "Database error")
	}
}
