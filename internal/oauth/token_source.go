package oauth

import (
	"context"
	"fmt"

	"slidecast-go/internal/config"

	"golang.org/x/oauth2"
)

// googleTokenURL is the default token endpoint when config leaves it blank.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// Enabled reports whether OAuth client credentials are configured.
func Enabled(cfg config.OAuthConfig) bool {
	return cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != ""
}

// TokenSource builds a self-refreshing token source from stored client
// credentials. Callers hold it for the process lifetime; oauth2 caches
// and refreshes the access token under the hood.
func TokenSource(ctx context.Context, cfg config.OAuthConfig) (oauth2.TokenSource, error) {
	if !Enabled(cfg) {
		return nil, fmt.Errorf("oauth credentials not configured")
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	base := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	return oauth2.ReuseTokenSource(nil, oc.TokenSource(ctx, base)), nil
}
