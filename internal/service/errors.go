// Error taxonomy shared by all entity services. Every remote failure is
// surfaced as exactly one of these sentinels so handlers can map it to a
// single user-facing message and HTTP status.
package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrConflict indicates a uniqueness violation on a natural key.
	ErrConflict = errors.New("already exists")

	// ErrDenied indicates an ownership or authorization rejection.
	ErrDenied = errors.New("access denied")

	// ErrInvalid indicates a value the schema rejects.
	ErrInvalid = errors.New("invalid request")

	// ErrNotFound indicates the requested row or stored object is absent.
	ErrNotFound = errors.New("not found")

	// ErrPayloadTooLarge indicates an upload exceeding the size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedMedia indicates an upload of a disallowed content type.
	ErrUnsupportedMedia = errors.New("unsupported content type")
)

// mapDBError folds driver-specific failures onto the taxonomy. Anything
// unrecognized passes through untouched so the raw message stays available
// for diagnostic display.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrInvalid
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return ErrConflict
	case strings.Contains(msg, "foreign key"):
		return ErrInvalid
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "row-level security"):
		return ErrDenied
	}
	return err
}

// UserMessage renders an error as the single human-readable string shown to
// the user. Unknown errors keep their raw message for diagnostics.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return "An entry with this name already exists."
	case errors.Is(err, ErrDenied):
		return "Access denied."
	case errors.Is(err, ErrInvalid):
		return "Invalid request."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrPayloadTooLarge):
		return "File too large."
	case errors.Is(err, ErrUnsupportedMedia):
		return "Unsupported file type."
	default:
		return err.Error()
	}
}
