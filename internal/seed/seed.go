// Package seed creates the demo user. Callers decide whether seeding is allowed.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/repo"
)

// DemoUser creates username with password unless the username already exists.
// It reports whether a user was created. An existing user's password is left untouched.
func DemoUser(ctx context.Context, users repo.UserStore, hasher auth.Hasher, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("seed: username and password are required")
	}

	if _, err := users.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("seed: lookup %q: %w", username, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if _, err := users.Create(ctx, username, hash); err != nil {
		// lost a race with another seeder
		if errors.Is(err, repo.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("seed: create %q: %w", username, err)
	}
	return true, nil
}
