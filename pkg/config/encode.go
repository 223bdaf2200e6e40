package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// Encode serializes the configuration back to TOML. The output may differ
// textually from the loaded document, but loading it again yields a
// semantically identical Config.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
