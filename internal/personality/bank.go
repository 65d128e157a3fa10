package personality

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBank []byte

// LoadBank decodes a YAML bank keyed by dichotomy and builds a Corpus from it.
func LoadBank(r io.Reader) (*Corpus, error) {
	var groups map[Dichotomy][]Question
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&groups); err != nil {
		return nil, fmt.Errorf("%w: decode bank: %v", ErrInvalidCorpus, err)
	}
	return NewCorpus(groups)
}

// LoadBankFile reads a bank from path.
func LoadBankFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// DefaultCorpus returns the built-in bank.
func DefaultCorpus() (*Corpus, error) {
	return LoadBank(bytes.NewReader(defaultBank))
}

// CheckCapacity verifies that c can serve every mode for the given seed.
// Call it at startup; a failure is a configuration error.
func CheckCapacity(c *Corpus, seed int64, modes ...Mode) error {
	for _, m := range modes {
		if _, err := Select(c, m.PerDichotomy(), seed); err != nil {
			return fmt.Errorf("%s mode: %w", m, err)
		}
	}
	return nil
}
