package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := &Config{port: 8080, publicURL: "https://quiz.example.com/"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, "https://quiz.example.com", cfg.publicURL)

	assert.Error(t, (&Config{port: 0}).validate())
	assert.Error(t, (&Config{port: 8080, publicURL: "quiz.example.com"}).validate())
}

func TestFlagsFromEnv(t *testing.T) {
	t.Setenv("QUIZ_PORT", "9090")
	t.Setenv("QUIZ_AUTO_ADVANCE", "true")

	cfg := &Config{}
	newCmd(cfg)
	assert.Equal(t, 9090, cfg.port)
	assert.True(t, cfg.autoAdvance)
	assert.Equal(t, "0.0.0.0:9090", cfg.addr())
}
