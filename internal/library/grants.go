package library

// Grants mediates access to folders outside the application sandbox.
// Every root the library touches is covered by an active grant, and
// grants persist across launches as sealed tokens.
type Grants interface {
	// Acquire grants access to path and mints a token for it.
	// Fails with ErrAccessDenied when the path cannot be granted and
	// ErrTokenCreation when sealing the token fails; in both cases no
	// session is left behind.
	Acquire(path string) (ActiveGrant, error)

	// Restore reopens access from a previously minted token.
	// Fails with ErrPathMissing when the target is gone and
	// ErrStaleToken when the path now names a different folder.
	Restore(token []byte) (ActiveGrant, error)
}

// ActiveGrant is one open access session. Release is idempotent;
// releasing twice must not double-close the underlying session.
type ActiveGrant interface {
	// Path is the folder the grant covers.
	Path() string

	// Token is the sealed form to persist for the next launch.
	Token() []byte

	// Release closes the session. Safe to call more than once.
	Release()
}
