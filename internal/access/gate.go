package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/nuvme-configurator/internal/common"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
)

const (
	defaultIssuer   = "nuvme-configurator"
	defaultAudience = "nuvme-configurator-web"
	defaultTokenTTL = 8 * time.Hour
	subjectPrefix   = "access:"
)

var (
	// ErrInvalidPIN is returned when the submitted PIN does not match.
	ErrInvalidPIN = errors.New("access: invalid pin")
	// ErrInvalidToken is returned for missing, expired or forged tokens.
	ErrInvalidToken = errors.New("access: invalid token")
)

// Config configures the Gate. An empty PINHash leaves the gate open.
type Config struct {
	PINHash   string
	Secret    string
	TokenTTL  time.Duration
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// Token is an issued access token.
type Token struct {
	Value     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate guards the configurator behind a shared PIN.
type Gate struct {
	pinHash   string
	secret    []byte
	ttl       time.Duration
	issuer    string
	audience  string
	clockSkew time.Duration
	validator TokenValidator
	now       func() time.Time
}

// NewGate validates cfg and constructs a Gate.
func NewGate(cfg Config) (*Gate, error) {
	pinHash := strings.TrimSpace(cfg.PINHash)
	secret := strings.TrimSpace(cfg.Secret)
	if pinHash != "" {
		if secret == "" {
			return nil, errors.New("access: token secret is required when a pin hash is set")
		}
		if _, _, _, err := argon2id.DecodeHash(pinHash); err != nil {
			return nil, fmt.Errorf("access: decode pin hash: %w", err)
		}
	}
	g := &Gate{
		pinHash:   pinHash,
		secret:    []byte(secret),
		ttl:       cfg.TokenTTL,
		issuer:    strings.TrimSpace(cfg.Issuer),
		audience:  strings.TrimSpace(cfg.Audience),
		clockSkew: cfg.ClockSkew,
		now:       time.Now,
	}
	if g.ttl <= 0 {
		g.ttl = defaultTokenTTL
	}
	if g.issuer == "" {
		g.issuer = defaultIssuer
	}
	if g.audience == "" {
		g.audience = defaultAudience
	}
	if g.clockSkew < 0 {
		g.clockSkew = 0
	}
	g.validator = TokenValidator{Issuer: g.issuer, Audience: g.audience, ClockSkew: g.clockSkew, Algorithm: jwa.HS256}
	return g, nil
}

// WithNow overrides the clock.
func (g *Gate) WithNow(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Enabled reports whether a PIN is required.
func (g *Gate) Enabled() bool { return g != nil && g.pinHash != "" }

// Unlock checks pin and issues an access token.
func (g *Gate) Unlock(_ context.Context, pin string) (Token, error) {
	if !g.Enabled() {
		return Token{}, common.Unavailable("access gate is not enabled", nil)
	}
	match, err := argon2id.ComparePasswordAndHash(strings.TrimSpace(pin), g.pinHash)
	if err != nil {
		obs.IncCounter(obs.AccessAttemptsTotal, "error")
		return Token{}, fmt.Errorf("access: compare pin: %w", err)
	}
	if !match {
		obs.IncCounter(obs.AccessAttemptsTotal, "denied")
		return Token{}, ErrInvalidPIN
	}
	obs.IncCounter(obs.AccessAttemptsTotal, "granted")
	return g.sign(subjectPrefix + uuid.NewString())
}

// Verify validates a token and returns its subject.
func (g *Gate) Verify(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", ErrInvalidToken
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if algorithm != g.validator.Algorithm {
		return "", fmt.Errorf("%w: unexpected algorithm %s", ErrInvalidToken, algorithm)
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, g.secret), jwt.WithValidate(false))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := g.validator.Validate(parsed, algorithm, g.now()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !strings.HasPrefix(parsed.Subject(), subjectPrefix) {
		return "", fmt.Errorf("%w: unexpected subject", ErrInvalidToken)
	}
	return parsed.Subject(), nil
}

func (g *Gate) sign(subject string) (Token, error) {
	now := g.now()
	expiresAt := now.Add(g.ttl)
	tok, err := jwt.NewBuilder().
		Subject(subject).
		Issuer(g.issuer).
		Audience([]string{g.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-g.clockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return Token{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, g.secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: string(signed), ExpiresAt: expiresAt}, nil
}

// HashPIN derives the argon2id hash stored in ACCESS_PIN_HASH.
func HashPIN(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if len(pin) < 4 {
		return "", errors.New("access: pin must have at least 4 characters")
	}
	return argon2id.CreateHash(pin, argon2id.DefaultParams)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
