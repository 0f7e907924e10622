package hubclient

import (
	"log/slog"
	"net/http"
)

// Config holds the configuration for the hub API client.
type Config struct {
	BaseURL     string
	BearerToken string
	// Cookie is an optional session cookie sent verbatim alongside the
	// bearer credential.
	Cookie    string
	ProjectID int
	// HTTPClient overrides the default client. The default imposes no
	// timeout; a streaming read may outlive any fixed deadline.
	HTTPClient *http.Client
	Logger     *slog.Logger
}
