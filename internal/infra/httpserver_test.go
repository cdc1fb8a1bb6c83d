package infra

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServerExtendsWriteTimeout(t *testing.T) {
	cfg := &Config{
		Port:              "9090",
		HTTPWriteTimeout:  30 * time.Second,
		GenerationTimeout: 120 * time.Second,
	}
	s := NewHTTPServer(cfg, http.NotFoundHandler())
	if s.Addr() != ":9090" {
		t.Fatalf("Addr() = %q, want %q", s.Addr(), ":9090")
	}
	if got := s.server.WriteTimeout; got != 130*time.Second {
		t.Fatalf("WriteTimeout = %s, want 130s", got)
	}
}

func TestNewHTTPServerKeepsLongerWriteTimeout(t *testing.T) {
	cfg := &Config{Port: "8080", HTTPWriteTimeout: 300 * time.Second, GenerationTimeout: 60 * time.Second}
	s := NewHTTPServer(cfg, http.NotFoundHandler())
	if got := s.server.WriteTimeout; got != 300*time.Second {
		t.Fatalf("WriteTimeout = %s, want 300s", got)
	}
}
