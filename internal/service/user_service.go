// Package service contains the use-case services that sit between the
// HTTP adapter and the persistence ports.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storegate/storegate/internal/domain/fault"
	"github.com/storegate/storegate/internal/domain/user"
)

// PasswordVault is the hashing dependency of UserService.
// Implemented by auth.Vault.
type PasswordVault interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encodedHash string) (bool, error)
}

// UserService implements account management and the login exchange.
type UserService struct {
	repo   user.Repository
	vault  PasswordVault
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo user.Repository, vault PasswordVault, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, vault: vault, logger: logger}
}

// Create validates the input, hashes the password, and stores the new
// user. Returns the assigned ID.
func (s *UserService) Create(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, fault.Validation("username is required")
	}
	if strings.TrimSpace(password) == "" {
		return 0, fault.Validation("password is required")
	}

	hash, err := s.vault.Hash(ctx, password)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		return 0, err
	}

	s.logger.Info("user created", "user_id", id, "username", username)
	return id, nil
}

// Get returns the user or a NotFound fault.
func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fault.NotFound()
	}
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	return s.repo.List(ctx)
}

// Update validates the input, rehashes the password, and replaces the
// stored record. Returns the updated user.
func (s *UserService) Update(ctx context.Context, id int64, username, password string) (*user.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fault.Validation("username is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, fault.Validation("password is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fault.NotFound()
	}

	hash, err := s.vault.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, username, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "username", username)
	return updated, nil
}

// Delete removes the user, or returns NotFound.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fault.NotFound()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// Login verifies the presented credentials and returns the matching
// user. An unknown username folds into the same Unauthorized outcome
// as a wrong password: login must not reveal account existence.
func (s *UserService) Login(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fault.Unauthorized("unknown user")
	}

	match, err := s.vault.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, fault.Unauthorized("password mismatch")
	}

	s.logger.Info("user logged in", "user_id", u.ID, "username", u.Username)
	return u, nil
}
