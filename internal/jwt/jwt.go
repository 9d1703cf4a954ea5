package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"highcard-server/internal/config"
	"highcard-server/pkg/token"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Issuer issues the JWT
const Issuer = "highcard-server"

var secret []byte

// LoadSecret will load the signing secret from the configuration
// this method should only be called once.
func LoadSecret() {
	s := config.Instance().TokenSecret
	if s == "" {
		logrus.Fatal("token secret is not configured")
	}

	secret = []byte(s)
}

// Sign will sign a seat ticket for the game
// The ticket is only good for the game it was issued for.
func Sign(gameUUID string, seat int) (string, error) {
	if secret == nil {
		panic("LoadSecret() not called")
	}

	id, err := token.Generate(20)
	if err != nil {
		return "", err
	}

	ticket := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{gameUUID},
		ID:       id,
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   Issuer,
		Subject:  strconv.Itoa(seat),
	})

	return ticket.SignedString(secret)
}

// ValidSeat will validate a signed seat ticket against the game
// and return the seat it was issued for
func ValidSeat(signedString, gameUUID string) (int, error) {
	if secret == nil {
		panic("LoadSecret() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return secret, nil
	})

	if err != nil {
		return 0, err
	}

	if token.Valid {
		if claims, ok := token.Claims.(*jwtgo.RegisteredClaims); ok {
			if !containsAudience(claims.Audience, gameUUID) {
				return 0, errors.New("invalid audience")
			}

			if claims.Issuer != Issuer {
				return 0, errors.New("invalid issuer")
			}

			return strconv.Atoi(claims.Subject)
		}

		return 0, fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	logrus.Warn("token claims were not valid. did not expect to reach this code")
	return 0, errors.New("claims were not valid")
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
