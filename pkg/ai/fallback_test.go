package ai

import (
	"errors"
	"testing"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp 127.0.0.1:11434: connection refused"), true},
		{"no host", errors.New("lookup api.example.com: no such host"), true},
		{"timeout", errors.New("request timeout exceeded"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"application error", errors.New("invalid request payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", errors.New("API returned status 429"), true},
		{"quota", errors.New("quota exceeded for this project"), true},
		{"rate limit", errors.New("rate limit reached"), true},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), true},
		{"other", errors.New("bad gateway"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuotaError(tt.err); got != tt.want {
				t.Errorf("isQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
