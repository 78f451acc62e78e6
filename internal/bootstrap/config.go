package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/go-authgate/mailbridge/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateProviderEndpoints(cfg); err != nil {
		log.Fatalf("Invalid provider configuration: %v", err)
	}
}

// validateProviderEndpoints checks that every Google endpoint is an absolute URL
func validateProviderEndpoints(cfg *config.Config) error {
	endpoints := []struct {
		name  string
		value string
	}{
		{"GOOGLE_REDIRECT_URL", cfg.GoogleRedirectURL},
		{"GOOGLE_AUTH_URL", cfg.GoogleAuthURL},
		{"GOOGLE_TOKEN_URL", cfg.GoogleTokenURL},
		{"GOOGLE_REVOKE_URL", cfg.GoogleRevokeURL},
		{"GOOGLE_API_BASE_URL", cfg.GoogleAPIBaseURL},
		{"GMAIL_API_BASE_URL", cfg.GmailAPIBaseURL},
	}

	for _, e := range endpoints {
		if e.value == "" {
			return fmt.Errorf("%s must not be empty", e.name)
		}
		u, err := url.Parse(e.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", e.name, e.value)
		}
	}

	if len(cfg.GoogleScopes) == 0 {
		return errors.New("GOOGLE_SCOPES must list at least one scope")
	}
	return nil
}
