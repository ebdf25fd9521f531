package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/internal/secrets"
	"github.com/el-feo/content-processing-sub001/observability"
)

// errSecretUnavailable marks a keyfunc failure caused by the secret store,
// so it classifies as an outage rather than a bad token.
var errSecretUnavailable = errors.New("signing secret unavailable")

// tokenClaims adds the scope conventions on top of the registered claims.
// Both the JSON-array form and the OAuth space-separated form are accepted.
type tokenClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	Scope  string   `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) scopeList() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	if c.Scope != "" {
		return strings.Fields(c.Scope)
	}
	return nil
}

// TokenValidator verifies bearer tokens. HMAC (HS256) against the shared
// secret is the primary flow; RSA (RS256) against a configured public key
// is the alternate for callers that cannot hold the shared secret.
type TokenValidator struct {
	secrets   secrets.Source
	publicKey *rsa.PublicKey
	grace     time.Duration
	methods   []string
	logger    observability.Logger
	metrics   observability.Metrics
}

// NewTokenValidator creates a validator. publicKeyPEM may be empty, which
// disables the RSA flow; a malformed PEM fails construction so the
// misconfiguration surfaces at startup.
func NewTokenValidator(source secrets.Source, publicKeyPEM string, grace time.Duration, logger observability.Logger, metrics observability.Metrics) (*TokenValidator, error) {
	v := &TokenValidator{
		secrets: source,
		grace:   grace,
		methods: []string{jwt.SigningMethodHS256.Alg()},
		logger:  logger,
		metrics: metrics,
	}

	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parsing auth public key: %w", err)
		}
		v.publicKey = key
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg())
	}

	return v, nil
}

// Authenticate verifies the token and returns the caller identity.
// Failures are domain errors: INVALID_TOKEN, EXPIRED_TOKEN or
// AUTH_UNAVAILABLE when the secret store cannot be reached.
func (v *TokenValidator) Authenticate(ctx context.Context, token string) (*AuthContext, error) {
	claims := &tokenClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc(ctx),
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(v.grace),
	)
	if err != nil {
		return nil, v.classify(ctx, err)
	}
	if !parsed.Valid {
		v.metrics.RecordError("auth", "invalid_token")
		return nil, domain.NewError(domain.CodeInvalidToken, "Authentication token is invalid", nil)
	}

	authCtx := &AuthContext{
		Subject: claims.Subject,
		Scopes:  claims.scopeList(),
	}
	if claims.ExpiresAt != nil {
		authCtx.ExpiresAt = claims.ExpiresAt.Time
	}

	v.metrics.RecordSuccess("auth")
	v.logger.Debug(ctx, "token verified", observability.Fields{
		"subject": authCtx.Subject,
	})

	return authCtx, nil
}

// keyFunc selects the verification key by signing method. The shared
// secret is re-read per verification so rotation takes effect without a
// restart; the cache behind the source keeps that cheap.
func (v *TokenValidator) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			secret, err := v.secrets.Get(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errSecretUnavailable, err)
			}
			return []byte(secret), nil
		case *jwt.SigningMethodRSA:
			if v.publicKey == nil {
				return nil, errors.New("RSA verification is not configured")
			}
			return v.publicKey, nil
		default:
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
	}
}

// classify maps a jwt parse failure onto the domain error model.
func (v *TokenValidator) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, errSecretUnavailable):
		v.metrics.RecordError("auth", "secret_unavailable")
		v.logger.Error(ctx, "token verification unavailable", err, nil)
		return domain.NewError(domain.CodeAuthUnavailable, "Authentication is temporarily unavailable", err)

	case errors.Is(err, jwt.ErrTokenExpired):
		v.metrics.RecordError("auth", "expired_token")
		return domain.NewError(domain.CodeExpiredToken, "Authentication token has expired", err)

	default:
		v.metrics.RecordError("auth", "invalid_token")
		v.logger.Debug(ctx, "token rejected", observability.Fields{
			"reason": err.Error(),
		})
		return domain.NewError(domain.CodeInvalidToken, "Authentication token is invalid", err)
	}
}
