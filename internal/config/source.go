// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DataDog/dd-otel-nethttp/internal/env"
	"github.com/DataDog/dd-otel-nethttp/internal/log"
)

// fileConfig is the YAML document read from EnvConfigFile:
//
//	config_id: 12
//	apm_configuration_default:
//	  DD_TRACE_PEER_SERVICE: billing
//	  DD_TRACE_HEADER_TAGS: x-request-id,user-agent
type fileConfig struct {
	Config configAllowList `yaml:"apm_configuration_default,omitempty"`
	ID     int             `yaml:"config_id,omitempty"`
}

type configAllowList map[string]string

var allowlist = map[string]struct{}{
	EnvClientErrorStatuses:      {},
	EnvClientQueryStringEnabled: {},
	EnvQueryStringRegexp:        {},
	EnvHeaderTags:               {},
	EnvPeerService:              {},
	EnvPropagation:              {},
}

// UnmarshalYAML drops every key that is not in allowlist.
func (l *configAllowList) UnmarshalYAML(value *yaml.Node) error {
	temp := make(map[string]string)
	if err := value.Decode(&temp); err != nil {
		return err
	}
	filtered := make(map[string]string, len(temp))
	for k, v := range temp {
		if _, ok := allowlist[k]; ok {
			filtered[k] = v
			continue
		}
		log.Debug("Ignoring unsupported key %q in configuration file", k)
	}
	*l = filtered
	return nil
}

func emptyFileConfig() *fileConfig {
	return &fileConfig{Config: configAllowList{}, ID: -1}
}

// parseFile reads the YAML configuration at path. A missing file yields an
// empty configuration and no error.
func parseFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyFileConfig(), nil
	}
	if err != nil {
		return emptyFileConfig(), fmt.Errorf("reading configuration file %s: %w", path, err)
	}
	return parseFileContents(data, path)
}

func parseFileContents(data []byte, path string) (*fileConfig, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return emptyFileConfig(), fmt.Errorf("parsing configuration file %s: %w", path, err)
	}
	if fc.Config == nil {
		fc.Config = configAllowList{}
	}
	if fc.ID == 0 {
		fc.ID = -1
	}
	return &fc, nil
}

// source resolves a setting from the environment first, then from the
// configuration file.
type source struct {
	file *fileConfig
}

func newSource() *source {
	s := &source{file: emptyFileConfig()}
	path, ok := env.Lookup(EnvConfigFile)
	if !ok || path == "" {
		return s
	}
	fc, err := parseFile(path)
	if err != nil {
		log.Warn("%v", err)
	}
	s.file = fc
	return s
}

func (s *source) lookup(name string) (string, bool) {
	if v, ok := env.Lookup(name); ok {
		return v, true
	}
	v, ok := s.file.Config[name]
	return v, ok
}
