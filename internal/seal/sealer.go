package seal

// Sealer wraps small payloads in an encrypted envelope bound to this
// installation's key material. Grant tokens travel through here so a
// token copied from another machine or install cannot be opened.
type Sealer interface {
	// Seal encrypts payload into an opaque envelope.
	Seal(payload []byte) ([]byte, error)

	// Unseal decrypts an envelope produced by Seal. Fails for
	// envelopes sealed under different key material.
	Unseal(sealed []byte) ([]byte, error)

	// Ready returns true if the key material exists.
	Ready() bool

	// Setup generates key material. Existing material is kept, so
	// previously sealed envelopes stay readable.
	Setup() error
}
