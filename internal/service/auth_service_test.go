package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hourlog/internal/db"
)

func TestAuthServiceAuthenticate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := db.EnsureAdmin(gdb, "staff@example.com", "secret", "Staff"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	seedMember(t, gdb, "Ana", nil)

	svc := NewAuthService(NewGormRepositories(gdb))
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, " Staff@Example.com ", "secret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if !user.IsAdmin() || user.Name != "Staff" {
		t.Fatalf("unexpected user: %+v", user)
	}

	cases := map[string][2]string{
		"wrong password": {"staff@example.com", "nope"},
		"unknown email":  {"ghost@example.com", "secret"},
		"member account": {"Ana@example.com", ""},
		"empty email":    {"", "secret"},
	}
	for name, creds := range cases {
		if _, err := svc.Authenticate(ctx, creds[0], creds[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
}
