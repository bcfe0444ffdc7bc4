package seal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
)

// AgeSealer implements Sealer using filippo.io/age with an X25519
// identity stored on disk. The identity file is the install binding:
// tokens seal to its recipient and only unseal where the same file
// lives. It is created with mode 0600 under a 0700 directory and never
// leaves the machine.
type AgeSealer struct {
	identityPath string
}

var _ Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates a new AgeSealer from configuration.
func NewAgeSealer(cfg config.SealingConfig) *AgeSealer {
	return &AgeSealer{
		identityPath: cfg.IdentityPath,
	}
}

// Setup generates a new X25519 identity and writes it to the identity
// path. An existing identity is kept, so tokens sealed before a restart
// stay readable.
func (s *AgeSealer) Setup() error {
	if s.Ready() {
		return nil
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.identityPath), 0700); err != nil {
		return fmt.Errorf("creating identity directory: %w", err)
	}

	if err := os.WriteFile(s.identityPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}

	return nil
}

// Ready returns true if the identity file exists.
func (s *AgeSealer) Ready() bool {
	_, err := os.Stat(s.identityPath)
	return err == nil
}

// Seal encrypts payload to this installation's recipient.
func (s *AgeSealer) Seal(payload []byte) ([]byte, error) {
	identity, err := s.loadIdentity()
	if err != nil {
		return nil, fmt.Errorf("loading sealing identity: %w", err)
	}

	var sealed bytes.Buffer
	w, err := age.Encrypt(&sealed, identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing seal: %w", err)
	}

	return sealed.Bytes(), nil
}

// Unseal decrypts an envelope sealed by this installation.
func (s *AgeSealer) Unseal(sealed []byte) ([]byte, error) {
	identity, err := s.loadIdentity()
	if err != nil {
		return nil, fmt.Errorf("loading sealing identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), identity)
	if err != nil {
		return nil, fmt.Errorf("opening sealed payload: %w", err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sealed payload: %w", err)
	}

	return payload, nil
}

// loadIdentity reads the identity file and parses it.
func (s *AgeSealer) loadIdentity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(s.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}

	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in identity file")
	}

	identity, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("identity is not an X25519 identity")
	}

	return identity, nil
}
