package auth

import "testing"

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if first == second {
		t.Fatal("expected different hashes for repeated calls")
	}
	if !VerifyPassword("secret-password", first) {
		t.Fatal("first hash should verify")
	}
	if !VerifyPassword("secret-password", second) {
		t.Fatal("second hash should verify")
	}
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if VerifyPassword("wrong-password", hash) {
		t.Fatal("wrong password should not verify")
	}
	if VerifyPassword("secret-password", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash should not verify")
	}
	if VerifyPassword("", hash) {
		t.Fatal("empty password should not verify")
	}
}
