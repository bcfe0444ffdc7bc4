package seal

import (
	"fmt"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.SealingConfig) (Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown sealing type: %q", cfg.Type)
	}
}
