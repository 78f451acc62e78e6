package bootstrap

import (
	"log"

	"github.com/go-authgate/mailbridge/internal/client"
	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/core"
	"github.com/go-authgate/mailbridge/internal/metrics"
	"github.com/go-authgate/mailbridge/internal/provider/google"
)

// initializeMailProvider creates the Google mail provider with a pooled HTTP client
func initializeMailProvider(
	cfg *config.Config,
	prometheusMetrics metrics.Recorder,
) (core.MailProvider, error) {
	if cfg.OAuthInsecureSkipVerify {
		log.Printf("WARNING: OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}

	httpClient, err := client.NewProviderHTTPClient(cfg.OAuthTimeout, cfg.OAuthInsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	provider := google.NewClient(googleConfig(cfg), httpClient, prometheusMetrics)
	log.Printf("Mail provider configured: %s (redirect=%s)", provider.Name(), cfg.GoogleRedirectURL)
	return provider, nil
}

// googleConfig maps application settings onto the Google client registration
func googleConfig(cfg *config.Config) google.Config {
	return google.Config{
		ClientID:      cfg.GoogleClientID,
		ClientSecret:  cfg.GoogleClientSecret,
		RedirectURL:   cfg.GoogleRedirectURL,
		Scopes:        cfg.GoogleScopes,
		AuthURL:       cfg.GoogleAuthURL,
		TokenURL:      cfg.GoogleTokenURL,
		RevokeURL:     cfg.GoogleRevokeURL,
		APIBaseURL:    cfg.GoogleAPIBaseURL,
		GmailBaseURL:  cfg.GmailAPIBaseURL,
		Timeout:       cfg.OAuthTimeout,
		MaxRetries:    cfg.ProviderMaxRetries,
		RetryDelay:    cfg.ProviderRetryDelay,
		MaxRetryDelay: cfg.ProviderMaxRetryDelay,
	}
}
