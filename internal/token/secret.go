package token

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ProfileProduction is the config profile that demands an explicit secret.
const ProfileProduction = "production"

var (
	ephemeralOnce   sync.Once
	ephemeralSecret string
	ephemeralErr    error
)

// ResolveSecret picks the signing secret. An explicit secret always wins. In
// the production profile a missing secret is an error. Otherwise, with
// devMode set, a random secret is generated once per process; tokens signed
// with it only verify on the same instance until it restarts.
func ResolveSecret(secret, profile string, devMode bool) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if profile == ProfileProduction {
		return "", eris.New("token: secret is required in the production profile")
	}
	if !devMode {
		return "", eris.New("token: secret is not set (set token.secret or enable token.dev_mode)")
	}

	ephemeralOnce.Do(func() {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			ephemeralErr = eris.Wrap(err, "token: generate ephemeral secret")
			return
		}
		ephemeralSecret = "dev-" + hex.EncodeToString(b)
		zap.L().Warn("token: using an ephemeral signing secret; tokens will not verify on other instances or after restart")
	})
	return ephemeralSecret, ephemeralErr
}
