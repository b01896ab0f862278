package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Expiry windows mirror the issued email links: activation and reset links
// are short-lived, a session lasts a day.
const (
	ActivationTTL = 10 * time.Minute
	SessionTTL    = 24 * time.Hour
	ResetTTL      = 10 * time.Minute
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// ActivationClaims carry the pending registration until the user follows the
// emailed link. The password travels inside the signed token and is only
// hashed when the account record is finally created.
type ActivationClaims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	jwt.RegisteredClaims
}

type SessionClaims struct {
	jwt.RegisteredClaims
}

type ResetClaims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies the three token purposes, each with its own
// secret, so a token for one purpose never validates under another.
type Codec struct {
	ActivationSecret []byte
	SessionSecret    []byte
	ResetSecret      []byte
}

func (t *Codec) IssueActivation(name, email, password string) (string, error) {
	claims := ActivationClaims{
		Name:     name,
		Email:    email,
		Password: password,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ActivationTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.ActivationSecret)
}

func (t *Codec) IssueSession(userID uint) (string, time.Time, error) {
	exp := time.Now().Add(SessionTTL)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.SessionSecret)
	return token, exp, err
}

// IssueReset gives each token a fresh id. Timestamps alone carry second
// precision, so without the id two quick reissues would produce equal tokens
// and the stored-link match could not tell them apart.
func (t *Codec) IssueReset(userID uint) (string, error) {
	claims := ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ResetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.ResetSecret)
}

func (t *Codec) VerifyActivation(token string) (*ActivationClaims, error) {
	var claims ActivationClaims
	if err := verify(token, &claims, t.ActivationSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (t *Codec) VerifySession(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := verify(token, &claims, t.SessionSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (t *Codec) VerifyReset(token string) (*ResetClaims, error) {
	var claims ResetClaims
	if err := verify(token, &claims, t.ResetSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// DecodeActivation extracts claims without checking signature or expiry.
// Callers must have run VerifyActivation on the same token first.
func DecodeActivation(token string) (*ActivationClaims, error) {
	var claims ActivationClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, ErrInvalid
	}
	return &claims, nil
}

func verify(token string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !tkn.Valid {
		return ErrInvalid
	}
	return nil
}

// UserID parses the numeric subject of a session or reset token.
func UserID(subject string) (uint, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return uint(id), nil
}
