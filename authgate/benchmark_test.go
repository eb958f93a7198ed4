package authgate

import (
	"context"
	"testing"
	"time"
)

func BenchmarkAuthenticate(b *testing.B) {
	cfg, err := NewConfig(WithHS256(testSecret))
	if err != nil {
		b.Fatalf("Failed to create config: %v", err)
	}
	gate := New(cfg)
	signer, _ := NewSigner(testSecret)
	token, _ := signer.Issue(7, time.Hour)
	header := bearer(token)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gate.Authenticate(context.Background(), header); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAuthenticateParallel(b *testing.B) {
	cfg, _ := NewConfig(WithHS256(testSecret))
	gate := New(cfg)
	signer, _ := NewSigner(testSecret)
	token, _ := signer.Issue(7, time.Hour)
	header := bearer(token)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := gate.Authenticate(context.Background(), header); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	signer, _ := NewSigner(testSecret)
	token, _ := signer.Issue(7, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPolicyGuard(b *testing.B) {
	guard, err := NewPolicyGuard(context.Background(), "")
	if err != nil {
		b.Fatal(err)
	}
	p := Principal{userID: 7}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := guard.Authorize(context.Background(), p, 7); err != nil {
			b.Fatal(err)
		}
	}
}
