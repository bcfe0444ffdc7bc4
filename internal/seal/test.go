package seal

import (
	"bytes"
	"fmt"
)

// testHeader is prepended to payloads by TestSealer to make sealed
// output clearly different from the payload while remaining
// deterministic and reversible.
var testHeader = []byte("IMGSEAL\x00")

// TestSealer is a simple, deterministic sealer for testing. It prepends
// a fixed 8-byte header when sealing and strips it when unsealing,
// requiring no key material.
type TestSealer struct {
	setupCalled bool
}

var _ Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Seal(payload []byte) ([]byte, error) {
	sealed := make([]byte, 0, len(testHeader)+len(payload))
	sealed = append(sealed, testHeader...)
	sealed = append(sealed, payload...)
	return sealed, nil
}

func (s *TestSealer) Unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < len(testHeader) || !bytes.Equal(sealed[:len(testHeader)], testHeader) {
		return nil, fmt.Errorf("invalid test seal header")
	}
	return append([]byte(nil), sealed[len(testHeader):]...), nil
}

func (s *TestSealer) Ready() bool {
	return true
}

func (s *TestSealer) Setup() error {
	s.setupCalled = true
	return nil
}
