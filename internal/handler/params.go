package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathID returns the {id} URL parameter. Ids are UUIDs, so anything else
// cannot name an existing row and is reported as notFound.
func pathID(r *http.Request, notFound error) (string, error) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		return "", notFound
	}
	return id, nil
}

// isUUID accepts only the canonical hyphenated form stored by the database.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
