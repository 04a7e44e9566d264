package validation

import "testing"

type dateDTO struct {
	Date string `validate:"required,isodate"`
}

type idDTO struct {
	ID string `validate:"required,objectid"`
}

func TestISODateTag(t *testing.T) {
	v := New()

	valid := []string{
		"2026-03-15",
		"2026-03-15T09:30:00Z",
		"2026-03-15T09:30:00.000Z",
		"2026-03-15T09:30:00+06:00",
	}
	for _, s := range valid {
		if err := v.Struct(dateDTO{Date: s}); err != nil {
			t.Fatalf("expected %q to pass: %v", s, err)
		}
	}

	invalid := []string{"15-03-2026", "2026/03/15", "tomorrow", "2026-13-40"}
	for _, s := range invalid {
		if err := v.Struct(dateDTO{Date: s}); err == nil {
			t.Fatalf("expected %q to fail", s)
		}
	}
}

func TestObjectIDTag(t *testing.T) {
	v := New()

	if err := v.Struct(idDTO{ID: "65f1c2d3e4a5b6c7d8e9f0a1"}); err != nil {
		t.Fatalf("expected valid hex id to pass: %v", err)
	}

	invalid := []string{"short", "65f1c2d3e4a5b6c7d8e9f0a1ff", "zzzzzzzzzzzzzzzzzzzzzzzz"}
	for _, s := range invalid {
		if err := v.Struct(idDTO{ID: s}); err == nil {
			t.Fatalf("expected %q to fail", s)
		}
	}
}

func TestValidationErrorsHelper(t *testing.T) {
	v := New()

	err := v.Struct(idDTO{})
	ve := v.ValidationErrors(err)
	if len(ve) != 1 {
		t.Fatalf("expected one validation error, got %d", len(ve))
	}
	if ve[0].Field() != "ID" {
		t.Fatalf("unexpected field: %q", ve[0].Field())
	}

	if v.ValidationErrors(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
