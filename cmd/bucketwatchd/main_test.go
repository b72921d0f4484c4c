package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthURL_FollowsListenPort(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		want   string
	}{
		{"default listen", "127.0.0.1:8080", "http://localhost:8080/health"},
		{"port only", ":9090", "http://localhost:9090/health"},
		{"all interfaces", "0.0.0.0:9999", "http://localhost:9999/health"},
		{"unparseable falls back", "garbage", "http://localhost:8080/health"},
		{"empty falls back", "", "http://localhost:8080/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthURL(tt.listen))
		})
	}
}
