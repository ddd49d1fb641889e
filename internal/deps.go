package internal

import (
	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/pkg/security"
)

// Deps is handed to every handler
type Deps struct {
	Config *config.Config
	Auth   *auth.Manager
	Tokens *security.TokenIssuer
}
