package twitter

import (
	"time"

	"twsnap/pkg/config"
	"twsnap/pkg/logger"
	"twsnap/pkg/ratelimit"
)

// NewClients builds one API client per configured credential. Each client
// gets its own token bucket so one worker's traffic never eats another
// credential's allowance. A credential whose setup fails is dropped from
// the pool for this run; the crawl continues with the rest.
func NewClients(creds []config.CredentialConfig, rl config.RateLimitConfig, timeout time.Duration, log logger.Logger) []*Client {
	if log == nil {
		log = logger.GetLogger()
	}

	clients := make([]*Client, 0, len(creds))
	for i, cred := range creds {
		limiter := ratelimit.NewTokenBucket(rl.RequestsPerWindow, rl.Window)

		client, err := NewClient(cred, timeout, limiter, log)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"credential": cred.Label,
				"index":      i,
			}).Warn("Dropping credential, client setup failed")
			continue
		}
		clients = append(clients, client)
	}

	log.InfoWithFields("Credential pool ready", map[string]interface{}{
		"configured": len(creds),
		"usable":     len(clients),
	})

	return clients
}
