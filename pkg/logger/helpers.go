package logger

// LogFetch logs the outcome of one fetch task
func LogFetch(kind, objectID string, success bool, err error) {
	fields := map[string]interface{}{
		"kind":      kind,
		"object_id": objectID,
		"success":   success,
	}

	log := GetLogger().WithFields(fields)

	if err != nil {
		log.WithError(err).Error("Fetch failed")
	} else if success {
		log.Info("Fetch completed")
	} else {
		log.Warn("Fetch skipped")
	}
}

// LogRateLimit logs when a credential hits its rate limit
func LogRateLimit(credential string, waitSeconds int) {
	GetLogger().WarnWithFields("Rate limit reached", map[string]interface{}{
		"credential":   credential,
		"wait_seconds": waitSeconds,
	})
}

// LogRequest logs HTTP request information
func LogRequest(method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	}
}
