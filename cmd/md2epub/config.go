// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/internal/convert"
	"github.com/pdiddy/md2epub/internal/history"
	"github.com/pdiddy/md2epub/internal/pandoc"
	"github.com/pdiddy/md2epub/pkg/types"
)

// loadConfig reads the effective configuration from v and validates it.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.ConverterConfig = cfg.ConverterConfig.WithDefaults()
	if cfg.History.Path == "" {
		cfg.History.Path = types.DefaultHistoryPath
	}
	if err := cfg.ConverterConfig.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// stylesheetPath returns the configured stylesheet, or the default file name
// when none is set.
func stylesheetPath(cfg types.Config) string {
	if cfg.Stylesheet != "" {
		return cfg.Stylesheet
	}
	return types.DefaultStylesheet
}

// session bundles the orchestrator with the resources it holds open.
type session struct {
	orch    *convert.Orchestrator
	history *history.Store
}

func (s *session) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// newSession wires the converter runner, the optional history store, and
// the orchestrator from cfg.
func newSession(cfg types.Config, runner pandoc.Runner, out, progress io.Writer) (*session, error) {
	s := &session{}
	opts := []convert.Option{convert.WithProgress(progress)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		s.history = store
		opts = append(opts, convert.WithRecorder(store))
	}

	conv := cfg.ConverterConfig
	conv.Stylesheet = stylesheetPath(cfg)
	s.orch = convert.New(runner, conv, out, opts...)
	return s, nil
}
