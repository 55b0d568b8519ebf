package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orion-backend/internal/domain"
)

const testSecret = "test-secret-key"

func testUser() domain.User {
	return domain.User{
		ID:          "u1",
		Email:       "bob@co.com",
		DisplayName: "Bob",
		Role:        domain.RoleUser,
	}
}

func TestJWTService_GenerateAndParse(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)

	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("token type = %q, want bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 60 {
		t.Fatalf("expires_in = %d, want 60", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "bob@co.com" || claims.Role != domain.RoleUser {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTService_RejectsRefreshTokenAsAccess(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("err = %v, want ErrJWTInvalid", err)
	}
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("other-secret", time.Minute, time.Hour)
	pair, err := issuer.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("err = %v, want ErrJWTInvalid", err)
	}
}

func TestJWTService_ExpiredAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	svc.accessTTL = -time.Minute

	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("err = %v, want ErrJWTExpired", err)
	}
}

func TestJWTService_RefreshRotation(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rotated, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := svc.ParseAccessToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("rotated uid = %q, want u1", claims.UserID)
	}

	// Each refresh token is single-use.
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("replay err = %v, want ErrJWTInvalid", err)
	}
}

func TestJWTService_RefreshRejectsForeignJTI(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Re-sign the live jti under another user's identity with the same
	// secret; the store binding must still reject it.
	original, err := svc.parseToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	forged := original
	forged.UserID = "u2"
	forged.Subject = "u2"
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign forged: %v", err)
	}

	if _, err := svc.RefreshPair(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("err = %v, want ErrJWTInvalid", err)
	}
	// The legitimate owner's token is still usable.
	if _, err := svc.RefreshPair(pair.RefreshToken); err != nil {
		t.Fatalf("owner refresh: %v", err)
	}
}

func TestJWTService_RevokeRefresh(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)
	pair, err := svc.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := svc.RevokeRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("err = %v, want ErrJWTInvalid after revoke", err)
	}
}

func TestJWTService_GarbageInput(t *testing.T) {
	svc := NewJWTService(testSecret, time.Minute, time.Hour)

	for _, token := range []string{"", "   ", "not.a.token"} {
		if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("parse %q: err = %v, want ErrJWTInvalid", token, err)
		}
		if _, err := svc.RefreshPair(token); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("refresh %q: err = %v, want ErrJWTInvalid", token, err)
		}
	}
}
