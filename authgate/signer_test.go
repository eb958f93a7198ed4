package authgate

import (
	"context"
	"testing"
	"time"
)

func TestSignerIssueIsAccepted(t *testing.T) {
	now := time.Now()
	signer, err := NewSigner(testSecret, WithIssuer("lifelog-oauth"), WithSignerClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	token, err := signer.Issue(42, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := NewVerifier(newTestConfig(t)).Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" || claims.Issuer != "lifelog-oauth" || claims.JWTID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt.Unix() != now.Add(time.Hour).Unix() {
		t.Errorf("unexpected exp %v", claims.ExpiresAt)
	}

	p, err := newTestGate(t).Authenticate(context.Background(), bearer(token))
	if err != nil || p.UserID() != 42 {
		t.Fatalf("expected principal 42, got %v (%v)", p, err)
	}
}

func TestSignerIssueExpired(t *testing.T) {
	signer, err := NewSigner(testSecret)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}
	token, err := signer.Issue(7, -time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = newTestGate(t).Authenticate(context.Background(), bearer(token))
	assertKind(t, err, KindExpired)
}

func TestSignerIssueWithClaims(t *testing.T) {
	signer, err := NewSigner(testSecret, WithIssuer("lifelog-oauth"))
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	token, err := signer.IssueWithClaims(42, time.Hour, map[string]any{
		"role": "admin",
		"sub":  "1",
		"iss":  "someone-else",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := NewVerifier(newTestConfig(t)).Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" || claims.Issuer != "lifelog-oauth" {
		t.Errorf("registered claims were overridden: %+v", claims)
	}
	if claims.Custom["role"] != "admin" {
		t.Errorf("expected role claim, got %v", claims.Custom)
	}
}
