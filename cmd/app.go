package cmd

import (
	"fmt"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/db"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/security"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// base is what every command builds before doing its work
type base struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *repository.GormStore
	codes  *codes.Store
	hasher *security.ArgonHash
	close  func()
}

func setup(cmd *cobra.Command) (*base, error) {
	cfg, err := config.Setup(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := cfg.SetupLogger()
	if err != nil {
		return nil, err
	}

	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle, %w", err)
	}

	gen, err := security.NewCodeGenerator(cfg.Code.Length)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &base{
		cfg:   cfg,
		log:   log,
		store: repository.NewGormStore(conn),
		codes: codes.New(gen, cfg.Code.TTL),
		hasher: &security.ArgonHash{
			Memory:      cfg.Argon.Memory,
			Iterations:  cfg.Argon.Iterations,
			Parallelism: cfg.Argon.Parallelism,
			SaltLength:  cfg.Argon.SaltLength,
			KeyLength:   cfg.Argon.KeyLength,
		},
		close: func() {
			sqlDB.Close()
			_ = log.Sync()
		},
	}, nil
}

func (a *base) phoneRule() validators.PhoneRule {
	return validators.PhoneRule{
		Prefix: a.cfg.Identifier.PhonePrefix,
		Length: a.cfg.Identifier.PhoneLength,
	}
}

func (a *base) tokens() (*security.TokenIssuer, error) {
	return security.NewTokenIssuer(a.cfg.JWT.Issuer,
		security.TokenConfig{Secret: a.cfg.JWT.Access.Secret, TTL: a.cfg.JWT.Access.TTL},
		security.TokenConfig{Secret: a.cfg.JWT.Refresh.Secret, TTL: a.cfg.JWT.Refresh.TTL},
	)
}

func (a *base) manager(tokens auth.Tokens, n auth.Notifier) (*auth.Manager, error) {
	return auth.NewManager(a.store, a.codes, a.hasher, tokens, n, auth.Options{
		ActiveOnRegister:       a.cfg.Account.ActiveOnRegister,
		RotateRefresh:          a.cfg.JWT.Refresh.Rotate,
		RevokeOnPasswordChange: a.cfg.Account.RevokeSessionsOnPasswordChange,
		PhoneRule:              a.phoneRule(),
	})
}
