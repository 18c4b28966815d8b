package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrProviderNotAllowed = errors.New("auth: sign-in provider not allowed")
)

// Identity is the verified caller.
type Identity struct {
	UID            string
	Email          string
	SignInProvider string
}

type firebaseClaims struct {
	Email    string `json:"email"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// KeySource resolves a token's signing key.
type KeySource interface {
	KeyFunc(token *jwt.Token) (interface{}, error)
}

// FirebaseVerifier checks Firebase ID tokens for one project.
type FirebaseVerifier struct {
	keys      KeySource
	projectID string
	issuer    string
	provider  string
}

func NewFirebaseVerifier(keys KeySource, projectID, allowedProvider string) *FirebaseVerifier {
	return &FirebaseVerifier{
		keys:      keys,
		projectID: projectID,
		issuer:    "https://securetoken.google.com/" + projectID,
		provider:  allowedProvider,
	}
}

func (v *FirebaseVerifier) Verify(_ context.Context, raw string) (*Identity, error) {
	claims := &firebaseClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keys.KeyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	if v.provider != "" && claims.Firebase.SignInProvider != v.provider {
		return nil, ErrProviderNotAllowed
	}

	return &Identity{
		UID:            claims.Subject,
		Email:          claims.Email,
		SignInProvider: claims.Firebase.SignInProvider,
	}, nil
}
