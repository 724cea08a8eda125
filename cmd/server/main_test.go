package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"slidecast-go/internal/config"
)

func TestBuildUpstreamClientWithAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.APIKey = "test-key"
	client := buildUpstreamClient(context.Background(), cfg)
	require.NotNil(t, client)
}

func TestBuildUpstreamClientWithOAuth(t *testing.T) {
	cfg := config.Default()
	cfg.OAuth.ClientID = "id"
	cfg.OAuth.ClientSecret = "secret"
	cfg.OAuth.RefreshToken = "refresh"
	client := buildUpstreamClient(context.Background(), cfg)
	require.NotNil(t, client)
}
