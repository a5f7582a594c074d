package jwt

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

const algorithm = gojose.HS256

// ErrInvalidToken is returned for tokens that fail parsing, signature or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Generator is responsible for signing and validating session JWTs.
type Generator struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewGenerator constructs a JWT generator from the shared secret.
func NewGenerator(secret string, ttl time.Duration, issuer string) *Generator {
	// go-jose rejects HMAC keys shorter than the digest size.
	sum := sha256.Sum256([]byte(secret))
	return &Generator{key: sum[:], ttl: ttl, issuer: issuer, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (g *Generator) TTL() time.Duration {
	return g.ttl
}

// SessionClaims represent the private JWT payload.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Issue signs a session token for the given email.
func (g *Generator) Issue(email, name string) (string, domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.Identity{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	signer, err := gojose.NewSigner(gojose.SigningKey{Algorithm: algorithm, Key: g.key}, (&gojose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("new signer: %w", err)
	}

	now := g.now().UTC()
	identity := domain.Identity{
		Email:     email,
		Name:      name,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(g.ttl),
	}
	std := gojwt.Claims{
		ID:       identity.TokenID,
		Subject:  email,
		Issuer:   g.issuer,
		IssuedAt: gojwt.NewNumericDate(now),
		Expiry:   gojwt.NewNumericDate(identity.ExpiresAt),
	}

	token, err := gojwt.Signed(signer).Claims(std).Claims(SessionClaims{Email: email, Name: name}).Serialize()
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("serialize jwt: %w", err)
	}
	return token, identity, nil
}

// Validate checks signature and expiry and returns the session identity.
func (g *Generator) Validate(token string) (domain.Identity, error) {
	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{algorithm})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: parse: %w", ErrInvalidToken, err)
	}

	var std gojwt.Claims
	var custom SessionClaims
	if err := parsed.Claims(g.key, &std, &custom); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: verify: %w", ErrInvalidToken, err)
	}
	if err := std.ValidateWithLeeway(gojwt.Expected{Issuer: g.issuer, Time: g.now()}, 0); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: claims: %w", ErrInvalidToken, err)
	}
	if custom.Email == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}

	identity := domain.Identity{Email: custom.Email, Name: custom.Name, TokenID: std.ID}
	if std.Expiry != nil {
		identity.ExpiresAt = std.Expiry.Time()
	}
	return identity, nil
}
