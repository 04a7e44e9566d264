package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDayRangeUTC(t *testing.T) {
	start, end, err := dayRangeUTC("2026-03-15")
	if err != nil {
		t.Fatalf("dayRangeUTC error: %v", err)
	}
	if start != "2026-03-15T00:00:00.000Z" {
		t.Fatalf("unexpected start: %q", start)
	}
	if end != "2026-03-15T23:59:59.999Z" {
		t.Fatalf("unexpected end: %q", end)
	}
}

func TestDayRangeUTCFullTimestamp(t *testing.T) {
	start, end, err := dayRangeUTC("2026-03-15T18:45:00Z")
	if err != nil {
		t.Fatalf("dayRangeUTC error: %v", err)
	}
	if start != "2026-03-15T00:00:00.000Z" || end != "2026-03-15T23:59:59.999Z" {
		t.Fatalf("expected whole-day bounds, got %q .. %q", start, end)
	}
}

func TestDayRangeUTCOffsetTimestamp(t *testing.T) {
	// 02:00 on the 16th at +07:00 is still the 15th in UTC.
	start, end, err := dayRangeUTC("2026-03-16T02:00:00+07:00")
	if err != nil {
		t.Fatalf("dayRangeUTC error: %v", err)
	}
	if start != "2026-03-15T00:00:00.000Z" || end != "2026-03-15T23:59:59.999Z" {
		t.Fatalf("expected the UTC day, got %q .. %q", start, end)
	}
}

func TestDayRangeUTCInvalid(t *testing.T) {
	if _, _, err := dayRangeUTC("15/03/2026"); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
}

func TestNormalizeIDString(t *testing.T) {
	doc := normalizeID(bson.M{"_id": "abc123", "name": "CBC"})
	if _, ok := doc["_id"]; ok {
		t.Fatalf("_id should be removed")
	}
	if doc["id"] != "abc123" {
		t.Fatalf("unexpected id: %v", doc["id"])
	}
	if doc["name"] != "CBC" {
		t.Fatalf("other fields must survive")
	}
}

func TestNormalizeIDObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := normalizeID(bson.M{"_id": oid})
	if doc["id"] != oid.Hex() {
		t.Fatalf("expected hex id %q, got %v", oid.Hex(), doc["id"])
	}
}

func TestNormalizeIDMissing(t *testing.T) {
	doc := normalizeID(bson.M{"name": "CBC"})
	if _, ok := doc["id"]; ok {
		t.Fatalf("id should not be invented")
	}
}
