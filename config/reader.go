package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	if cfg.SamplingTime == 0 {
		logger.Debugf("no sampling_time configured, using %v", DefaultSamplingTime)
		cfg.SamplingTime = DefaultSamplingTime
	}
	return &cfg, nil
}

// ReadSequence reads a motion sequence request from the given file. Environment variables in the
// file are expanded.
func ReadSequence(filePath string) (motionplan.MotionSequenceRequest, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return motionplan.MotionSequenceRequest{}, err
	}
	return SequenceFromReader(bytes.NewReader(buf))
}

// SequenceFromReader decodes a motion sequence request. Unknown fields are rejected.
func SequenceFromReader(r io.Reader) (motionplan.MotionSequenceRequest, error) {
	var req motionplan.MotionSequenceRequest
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return motionplan.MotionSequenceRequest{}, errors.Wrap(err, "failed to decode motion sequence from json")
	}
	return req, nil
}
