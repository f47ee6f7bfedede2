package users

import "testing"

func TestUserRequestValidate(t *testing.T) {
	base := UserRequest{Email: "admin@example.com", Name: "Ada", Role: "ADMIN", Password: "long-enough"}

	if fields := base.validate(true); fields != nil {
		t.Fatalf("expected valid request, got %v", fields)
	}

	t.Run("missing email", func(t *testing.T) {
		req := base
		req.Email = ""
		if fields := req.validate(true); fields["email"] == "" {
			t.Fatal("expected an email error")
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		req := base
		req.Email = "not-an-address"
		if fields := req.validate(true); fields["email"] == "" {
			t.Fatal("expected an email error")
		}
	})

	t.Run("short password", func(t *testing.T) {
		req := base
		req.Password = "short"
		if fields := req.validate(true); fields["password"] == "" {
			t.Fatal("expected a password error")
		}
	})

	t.Run("password optional on update", func(t *testing.T) {
		req := base
		req.Password = ""
		if fields := req.validate(false); fields != nil {
			t.Fatalf("expected empty password to be accepted, got %v", fields)
		}
		if fields := req.validate(true); fields["password"] == "" {
			t.Fatal("expected a password error on create")
		}
	})

	t.Run("bad role", func(t *testing.T) {
		req := base
		req.Role = "ROOT"
		if fields := req.validate(true); fields["role"] == "" {
			t.Fatal("expected a role error")
		}
	})

	t.Run("multiple errors reported together", func(t *testing.T) {
		req := UserRequest{}
		fields := req.validate(true)
		if len(fields) < 3 {
			t.Fatalf("expected errors for every missing field, got %v", fields)
		}
	})
}
