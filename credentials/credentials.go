package credentials

import (
	"context"
	"crypto/sha1" // #nosec G505 -- the remote service mandates SHA-1 password digests.
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"
)

// Setting keys used in the persisted cache.
const (
	KeyUsername = "username"
	KeyPassword = "password"
)

// Credentials is a username and the one-way hash of its password. The
// cleartext password is never stored.
type Credentials struct {
	Username     string
	PasswordHash string
}

// IsZero reports whether either field is missing.
func (c Credentials) IsZero() bool {
	return c.Username == "" || c.PasswordHash == ""
}

// HashPassword returns the lowercase hex SHA-1 digest of password.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Store persists credentials between process runs.
type Store interface {
	// Load returns the cached credentials and whether a complete entry exists.
	Load(ctx context.Context) (Credentials, bool, error)
	// Save writes credentials, replacing any previous entry.
	Save(ctx context.Context, creds Credentials) error
}

// Source holds externally supplied settings, typically read from the
// environment (SD_USER, SD_PWD) or the config file.
type Source struct {
	Username string
	Password string
}

// Provider resolves credentials from the cache, falling back to Source and
// caching the derived hash on first use.
type Provider struct {
	cache  Store
	source Source
	logger zerolog.Logger
}

// NewProvider creates a Provider reading through cache.
func NewProvider(cache Store, source Source, logger zerolog.Logger) *Provider {
	return &Provider{
		cache:  cache,
		source: source,
		logger: logger,
	}
}

// Load returns credentials from the cache or derives them from the external
// settings. Every failure is a *StoreError.
func (p *Provider) Load(ctx context.Context) (Credentials, error) {
	if p.cache == nil {
		return Credentials{}, &StoreError{Op: "load", Err: ErrNoCache}
	}

	creds, ok, err := p.cache.Load(ctx)
	if err != nil {
		return Credentials{}, &StoreError{Op: "load", Err: err}
	}
	if ok {
		p.logger.Debug().Str("username", creds.Username).Msg("Using cached credentials")
		return creds, nil
	}

	username := strings.TrimSpace(p.source.Username)
	if username == "" {
		return Credentials{}, &StoreError{Op: "load", Setting: "SD_USER", Err: ErrMissingSetting}
	}
	if p.source.Password == "" {
		return Credentials{}, &StoreError{Op: "load", Setting: "SD_PWD", Err: ErrMissingSetting}
	}

	creds = Credentials{
		Username:     username,
		PasswordHash: HashPassword(p.source.Password),
	}
	if err := p.cache.Save(ctx, creds); err != nil {
		return Credentials{}, &StoreError{Op: "save", Err: err}
	}

	p.logger.Info().Str("username", creds.Username).Msg("Cached credentials from configuration")
	return creds, nil
}

// Save writes creds to the cache.
func (p *Provider) Save(ctx context.Context, creds Credentials) error {
	if p.cache == nil {
		return &StoreError{Op: "save", Err: ErrNoCache}
	}
	if creds.IsZero() {
		return &StoreError{Op: "save", Err: ErrIncomplete}
	}
	if err := p.cache.Save(ctx, creds); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}
