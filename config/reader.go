package config

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Read loads a robot configuration from the JSON file at path.
func Read(path string) (*Robot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)

	cfg, err := FromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	return cfg, nil
}

// FromReader parses a robot configuration from JSON.
func FromReader(r io.Reader) (*Robot, error) {
	var cfg Robot
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	return &cfg, nil
}
