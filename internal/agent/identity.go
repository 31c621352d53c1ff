// ABOUTME: Identity provider integration minting bearer tokens for the agent API
// ABOUTME: Uses Google service-account credentials via golang.org/x/oauth2/google

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GoogleTokenSource mints access tokens from Google service-account
// credentials. Credential resolution order: inline JSON, key file path,
// application default credentials.
type GoogleTokenSource struct {
	credentialsJSON string
	credentialsFile string
	logger          *slog.Logger
}

// NewGoogleTokenSource creates a token source. Both credential inputs may be
// empty, in which case application default credentials are used.
func NewGoogleTokenSource(credentialsJSON, credentialsFile string, logger *slog.Logger) *GoogleTokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleTokenSource{
		credentialsJSON: credentialsJSON,
		credentialsFile: credentialsFile,
		logger:          logger.With("component", "agent-identity"),
	}
}

// Token mints a fresh bearer token with the cloud-platform scope.
func (s *GoogleTokenSource) Token(ctx context.Context) (string, error) {
	creds, err := s.resolveCredentials(ctx)
	if err != nil {
		return "", err
	}

	token, err := creds.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("identity provider returned empty access token")
	}

	return token.AccessToken, nil
}

func (s *GoogleTokenSource) resolveCredentials(ctx context.Context) (*google.Credentials, error) {
	if s.credentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(s.credentialsJSON), cloudPlatformScope)
		if err != nil {
			// Fall through: a malformed inline secret should not mask a
			// working key file, mirroring the resolution order.
			s.logger.Warn("failed to parse inline agent credentials", "error", err)
		} else {
			return creds, nil
		}
	}

	if s.credentialsFile != "" {
		data, err := os.ReadFile(s.credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials file: %w", err)
		}
		return creds, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("resolving default credentials: %w", err)
	}
	return creds, nil
}

// Ensure GoogleTokenSource implements TokenSource.
var _ TokenSource = (*GoogleTokenSource)(nil)
