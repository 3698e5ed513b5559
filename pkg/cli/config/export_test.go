package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(secret string, ttl time.Duration, noAuth bool) *Auth {
	return &Auth{
		secret:     secret,
		sessionTTL: ttl,
		noAuth:     noAuth,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(bucket, prefix string) *Storage {
	return &Storage{bucket: bucket, prefix: prefix}
}

// NewAppConfigForTest creates an AppConfig bound to path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
