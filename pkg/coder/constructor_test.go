// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package coder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	valid := Config{
		DocPath: "app.cdml",
		WorkDir: t.TempDir(),
		Model:   "test-model",
		Region:  "us-east-1",
	}
	assert.NoError(t, validateConfig(valid))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing doc path", func(c *Config) { c.DocPath = "" }, "DocPath"},
		{"missing work dir", func(c *Config) { c.WorkDir = "" }, "WorkDir"},
		{"nonexistent work dir", func(c *Config) { c.WorkDir = "/does/not/exist" }, "WorkDir"},
		{"missing model", func(c *Config) { c.Model = "" }, "Model"},
		{"missing region", func(c *Config) { c.Region = "" }, "Region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := validateConfig(cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, defaultMaxTokens, cfg.MaxTokens)

	cfg = Config{MaxRetries: 7, MaxTokens: 1024}
	applyDefaults(&cfg)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 1024, cfg.MaxTokens)
}
