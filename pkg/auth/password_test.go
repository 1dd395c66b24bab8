package auth

import "testing"

func TestPasswordChecker_Plain(t *testing.T) {
	c := NewPasswordChecker("", "hunter2")
	if !c.Check("hunter2") {
		t.Error("expected correct password to pass")
	}
	if c.Check("hunter3") {
		t.Error("expected wrong password to fail")
	}
	if c.Check("") {
		t.Error("expected empty password to fail")
	}
}

func TestPasswordChecker_Hash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	c := NewPasswordChecker(hash, "ignored")
	if !c.Check("s3cret") {
		t.Error("expected hashed password to pass")
	}
	if c.Check("ignored") {
		t.Error("plain value must be ignored when a hash is configured")
	}
}

func TestPasswordChecker_NothingConfigured(t *testing.T) {
	if NewPasswordChecker("", "").Check("anything") {
		t.Error("expected failure when no credential is configured")
	}
}
