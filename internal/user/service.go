package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"anitrack/internal/platform/crypto"
)

type Service struct {
	repo     Repository
	secret   string
	tokenTTL time.Duration
}

func NewService(repo Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

func (s *Service) Register(ctx context.Context, email, username, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	u := &User{
		Email:    email,
		Username: strings.TrimSpace(username),
		Password: hashed,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Session{}, ErrUnauthorized
	}

	token, err := crypto.GenerateToken(s.secret, u.ID, u.Username, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        u,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}
