// Package secret manages the process-wide token signing secret.
//
// The secret is a single random string persisted outside the process and
// loaded once at startup. It is treated as immutable for the process
// lifetime; rotation is an operational task, not an API.
package secret

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thskolan/casetrack/internal/crypto"
	"github.com/thskolan/casetrack/internal/errs"
)

// MinLength is the minimum accepted secret length.
const MinLength = crypto.SecretLength

// Load reads the signing secret from path.
func Load(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: secret file %q", errs.ErrNotFound, path)
		}
		return "", fmt.Errorf("read secret: %w", err)
	}
	s := strings.TrimSpace(string(b))
	if len(s) < MinLength {
		return "", fmt.Errorf("%w: secret in %q is shorter than %d characters", errs.ErrInvalidArgument, path, MinLength)
	}
	return s, nil
}

// LoadOrCreate reads the signing secret from path, generating and persisting
// a fresh one on first use. Concurrent first-use callers converge on a single
// value: the file is created with O_EXCL, and a caller that loses the race
// re-reads the value the winner persisted.
func LoadOrCreate(path string) (string, error) {
	if s, err := Load(path); err == nil {
		return s, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", err
	}

	generated, err := crypto.GenerateToken(crypto.SecretLength)
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create secret dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			// Lost the provisioning race; the winner's value is authoritative.
			return Load(path)
		}
		return "", fmt.Errorf("create secret file: %w", err)
	}
	if _, err := f.WriteString(generated + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("write secret file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close secret file: %w", err)
	}
	return generated, nil
}
