package httpx

import (
	"net/url"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	if err := DecodeJSON(strings.NewReader(`{"email":"a@b.com"}`), &dst); err != nil {
		t.Fatalf("DecodeJSON error: %v", err)
	}
	if dst.Email != "a@b.com" {
		t.Fatalf("unexpected email: %q", dst.Email)
	}
}

func TestDecodeJSONUnknownField(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	if err := DecodeJSON(strings.NewReader(`{"email":"a@b.com","extra":1}`), &dst); err == nil {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestDecodeJSONTrailingData(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	if err := DecodeJSON(strings.NewReader(`{"email":"a@b.com"}{"email":"c@d.com"}`), &dst); err == nil {
		t.Fatalf("expected trailing object to fail")
	}
}

func TestParsePageSizeDefaults(t *testing.T) {
	skip, limit, err := ParsePageSize(url.Values{}, 6, 50)
	if err != nil {
		t.Fatalf("ParsePageSize error: %v", err)
	}
	if skip != 0 || limit != 6 {
		t.Fatalf("expected skip=0 limit=6, got skip=%d limit=%d", skip, limit)
	}
}

func TestParsePageSizeSkipMath(t *testing.T) {
	values := url.Values{"page": {"3"}, "size": {"10"}}
	skip, limit, err := ParsePageSize(values, 6, 50)
	if err != nil {
		t.Fatalf("ParsePageSize error: %v", err)
	}
	if skip != 20 || limit != 10 {
		t.Fatalf("expected skip=20 limit=10, got skip=%d limit=%d", skip, limit)
	}
}

func TestParsePageSizeCapsSize(t *testing.T) {
	values := url.Values{"size": {"500"}}
	_, limit, err := ParsePageSize(values, 6, 50)
	if err != nil {
		t.Fatalf("ParsePageSize error: %v", err)
	}
	if limit != 50 {
		t.Fatalf("expected capped limit=50, got %d", limit)
	}
}

func TestParsePageSizeInvalid(t *testing.T) {
	cases := []url.Values{
		{"page": {"0"}},
		{"page": {"-1"}},
		{"page": {"abc"}},
		{"size": {"0"}},
		{"size": {"x"}},
	}
	for _, values := range cases {
		if _, _, err := ParsePageSize(values, 6, 50); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}
