package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/akulakov/docscan/internal/crypto"
	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
	"github.com/akulakov/docscan/internal/repository"
)

// seedAdmin creates the admin account on first start. An existing account
// with the same username is left untouched.
func seedAdmin(ctx context.Context, users repository.UserRepository, username, password string) error {
	if password == "" {
		return fmt.Errorf("admin password required when --admin-user is set")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return err
	}
	u := &model.User{
		ID:       id,
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
		Role:     model.RoleAdmin,
		Credits:  20,
	}
	if err := users.Create(ctx, u); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
		return err
	}
	return nil
}
