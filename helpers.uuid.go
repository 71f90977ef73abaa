package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler issues the `prefix:uuid` identifiers used for books,
// requests and editor sessions, and recognizes the ones it issued.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id, prefix string) bool
}

// IDsHandler backs UIDHandler with random version 4 UUIDs.
type IDsHandler struct{}

func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate returns prefix, a colon and a fresh UUID. The generator only
// fails when the system randomness is unavailable; the nil UUID is then
// used and rejected later by IsValid.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid tells whether id carries prefix followed by a non-nil UUID.
// Session cookies and book paths are checked with it before any lookup.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	raw, found := strings.CutPrefix(id, prefix+":")
	if !found {
		return false
	}
	return uuid.FromStringOrNil(raw) != uuid.Nil
}
