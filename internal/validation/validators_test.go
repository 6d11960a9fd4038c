package validation

import (
	"regexp"
	"testing"
)

const errNameRequired = "Nom est obligatoire."

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		maxLen  int
		value   string
		wantErr string
	}{
		{name: "valid input", maxLen: 10, value: "valid"},
		{name: "empty string", maxLen: 10, value: "", wantErr: errNameRequired},
		{name: "whitespace only", maxLen: 10, value: "   ", wantErr: errNameRequired},
		{name: "exceeds max length", maxLen: 5, value: "toolong", wantErr: "Nom ne peut pas dépasser 5 caractères."},
		{name: "exactly max length", maxLen: 5, value: "exact"},
		{name: "accented characters within limit", maxLen: 5, value: "éèàùç"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required("Nom", tt.maxLen)(tt.value); got != tt.wantErr {
				t.Errorf("Required() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	v := Optional("Description", 4)
	if got := v(""); got != "" {
		t.Errorf("empty optional should pass, got %q", got)
	}
	if got := v("abcde"); got == "" {
		t.Error("expected length error")
	}
}

func TestIntRange(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "valid integer", value: "50"},
		{name: "empty is accepted", value: ""},
		{name: "below minimum", value: "0", wantErr: "Capacité doit être compris entre 1 et 100."},
		{name: "above maximum", value: "101", wantErr: "Capacité doit être compris entre 1 et 100."},
		{name: "not a number", value: "abc", wantErr: "Capacité doit être un nombre."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntRange("Capacité", 1, 100)(tt.value); got != tt.wantErr {
				t.Errorf("IntRange() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	v := Decimal("Prix")
	if v("12.50") != "" || v("0") != "" {
		t.Error("expected valid prices to pass")
	}
	if v("-1") == "" || v("douze") == "" {
		t.Error("expected invalid prices to fail")
	}
}

func TestEmail(t *testing.T) {
	v := Email("Email")
	if v("jane@example.com") != "" {
		t.Error("expected valid email to pass")
	}
	if v("jane@") == "" || v("not an email") == "" {
		t.Error("expected invalid email to fail")
	}
}

func TestHTTPURL(t *testing.T) {
	v := HTTPURL("Image")
	if v("https://cdn.example.com/a.png") != "" {
		t.Error("expected https URL to pass")
	}
	if v("ftp://example.com/a.png") == "" || v("/relative.png") == "" {
		t.Error("expected non-http URL to fail")
	}
}

func TestDate(t *testing.T) {
	v := Date("Date")
	for _, ok := range []string{"2025-06-01", "2025-06-01T20:30:00Z", "2025-06-01T20:30"} {
		if got := v(ok); got != "" {
			t.Errorf("Date(%q) = %q, want valid", ok, got)
		}
	}
	if v("01/06/2025") == "" {
		t.Error("expected non-ISO date to fail")
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("Rôle", []string{"admin", "organizer", "user"})
	if v("ADMIN") != "" {
		t.Error("expected case-insensitive match")
	}
	if v("guest") == "" {
		t.Error("expected unknown option to fail")
	}
}

func TestPattern(t *testing.T) {
	v := Pattern("Code postal", regexp.MustCompile(`^\d{5}$`))
	if v("75001") != "" {
		t.Error("expected match")
	}
	if v("7500") == "" {
		t.Error("expected mismatch")
	}
}

func TestFieldValidator(t *testing.T) {
	fv := New().
		Validate("name", "", Required("Nom", 50)).
		Validate("email", "jane@", Required("Email", 50), Email("Email")).
		Validate("city", "Lyon", Required("Ville", 50))

	if !fv.HasErrors() {
		t.Fatal("expected errors")
	}
	errs := fv.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs["name"] != errNameRequired {
		t.Errorf("name error = %q", errs["name"])
	}
	field, msg := fv.First()
	if field != "name" || msg != errNameRequired {
		t.Errorf("First() = %q, %q", field, msg)
	}
}
