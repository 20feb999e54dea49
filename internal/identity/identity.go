// Package identity validates bearer tokens issued by the external identity
// provider and exposes the caller as a User with capability flags.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = errors.New("authentication credentials were not provided")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

// User is the acting identity passed explicitly into every service call.
type User struct {
	ID         uint `json:"id"`
	CanJoin    bool `json:"can_join"`
	CanPost    bool `json:"can_post"`
	CanComment bool `json:"can_comment"`
	IsStaff    bool `json:"is_staff"`
}

type Claims struct {
	CanJoin    bool `json:"can_join"`
	CanPost    bool `json:"can_post"`
	CanComment bool `json:"can_comment"`
	IsStaff    bool `json:"is_staff"`
	jwt.RegisteredClaims
}

type Provider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewProvider(secret, issuer string) *Provider {
	return &Provider{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Authenticate resolves a raw bearer token into a User.
func (p *Provider) Authenticate(token string) (User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return User{}, ErrTokenExpired
		}
		return User{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return User{}, fmt.Errorf("%w: subject must be a user id", ErrTokenInvalid)
	}

	return User{
		ID:         uint(id),
		CanJoin:    claims.CanJoin,
		CanPost:    claims.CanPost,
		CanComment: claims.CanComment,
		IsStaff:    claims.IsStaff,
	}, nil
}

// Issue signs a token for u. The identity provider owns issuance in production;
// this exists for local tooling and tests.
func (p *Provider) Issue(u User, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		CanJoin:    u.CanJoin,
		CanPost:    u.CanPost,
		CanComment: u.CanComment,
		IsStaff:    u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
