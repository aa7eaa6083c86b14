package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"posu-analytics/internal/model"
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() (model.Principal, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return model.Principal{}, ErrInvalidClaims
	}
	role, ok := model.ParseRole(c.Role)
	if !ok {
		return model.Principal{}, ErrInvalidClaims
	}
	return model.Principal{ActorID: uint(id), Role: role}, nil
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Sign issues an HS256 token for a principal. Used by operators and tests; the login flow lives elsewhere.
func (p *Parser) Sign(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = strconv.FormatUint(uint64(principal.ActorID), 10)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: string(principal.Role), RegisteredClaims: claims})
	return token.SignedString(p.secret)
}
