package library

import "errors"

// Grant errors. Acquire fails with ErrAccessDenied or ErrTokenCreation;
// Restore distinguishes a folder that is gone from one that was swapped
// out from under its token.
var (
	// ErrAccessDenied means the target cannot be granted access,
	// typically because it does not exist or is not a directory.
	ErrAccessDenied = errors.New("access denied")

	// ErrTokenCreation means the grant was possible but sealing the
	// persistent token failed.
	ErrTokenCreation = errors.New("token creation failed")

	// ErrStaleToken means the token's target path exists but is no
	// longer the folder the token was minted for.
	ErrStaleToken = errors.New("token is stale")

	// ErrPathMissing means the token's target path no longer exists.
	ErrPathMissing = errors.New("granted path is missing")
)
