package domain

// Error is a sentinel error kind shared by services and transport.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrUnauthenticated    Error = "authentication required"
	ErrForbidden          Error = "invalid or expired token"
	ErrNotFound           Error = "not found"
	ErrConflict           Error = "already exists"
	ErrValidation         Error = "missing required fields"
	ErrInvalidCredentials Error = "invalid credentials"
	ErrSessionNotFound    Error = "session not found"
	ErrNotAuthor          Error = "only the author can do that"
)
