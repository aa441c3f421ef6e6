package main

import (
	"testing"

	"go.lumeweb.com/checkout-bridge/internal/config"
)

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(config.LogConfig{Level: "debug", Development: true}); err != nil {
		t.Errorf("newLogger(debug) error = %v", err)
	}
	if _, err := newLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("newLogger(loud) error = nil")
	}
}
