package token

import (
	"errors"
	"testing"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", 1, 1)

	access, err := m.GenerateToken(7, "maya", "USER")
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := m.GenerateRefreshToken(7, "maya", "USER")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := m.VerifyKind(access, KindAccess)
	if err != nil {
		t.Fatalf("VerifyKind(access) error = %v", err)
	}
	if claims.UserID != 7 || claims.Username != "maya" || claims.Role != "USER" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token ID")
	}

	if _, err := m.VerifyKind(refresh, KindAccess); !errors.Is(err, ErrWrongKind) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := m.VerifyKind(refresh, KindRefresh); err != nil {
		t.Errorf("VerifyKind(refresh) error = %v", err)
	}
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	issued, err := NewJWTManager("one", 1, 1).GenerateToken(1, "a", "USER")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTManager("two", 1, 1).VerifyToken(issued); err == nil {
		t.Error("token signed with another secret was accepted")
	}
	if _, err := NewJWTManager("one", 1, 1).VerifyToken("not-a-token"); err == nil {
		t.Error("garbage token was accepted")
	}
}
