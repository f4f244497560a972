package main

import (
	"todo_webapp/internal/config"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	redis "github.com/redis/go-redis/v9"
)

func rdbNonceStore(rdb *redis.Client) service.NonceStore {
	if rdb == nil {
		return service.NewMemoryNonceStore()
	}
	return service.NewRedisNonceStore(rdb)
}

// newOAuthService enables each provider whose client id is configured
func newOAuthService(cfg *config.Config, states service.NonceStore, users *service.UserService) *service.OAuthService {
	var providers []service.OAuthProvider
	if cfg.GitHubClientID != "" {
		providers = append(providers, service.NewGitHubProvider(
			cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.BaseURL+"/oauth2/github/callback"))
	}
	if cfg.GoogleClientID != "" {
		providers = append(providers, service.NewGoogleProvider(
			cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL+"/oauth2/google/callback"))
	}
	for _, p := range providers {
		logger.Info("oauth provider enabled", "provider", p.Name())
	}
	return service.NewOAuthService(states, users, providers...)
}
