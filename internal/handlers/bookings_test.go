package handlers

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recordedUpdate struct {
	filter bson.M
	update bson.M
}

type fakeSlotUpdater struct {
	results []*mongo.UpdateResult
	errs    []error
	calls   []recordedUpdate
}

func (f *fakeSlotUpdater) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	i := len(f.calls)
	f.calls = append(f.calls, recordedUpdate{filter: filter.(bson.M), update: update.(bson.M)})

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	res := &mongo.UpdateResult{}
	if i < len(f.results) && f.results[i] != nil {
		res = f.results[i]
	}
	return res, err
}

func TestReserveSlotDecrementsConditionally(t *testing.T) {
	tests := &fakeSlotUpdater{results: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}}}

	if err := reserveSlot(context.Background(), tests, "test-1"); err != nil {
		t.Fatalf("reserveSlot error: %v", err)
	}
	if len(tests.calls) != 1 {
		t.Fatalf("expected one update, got %d", len(tests.calls))
	}

	call := tests.calls[0]
	if call.filter["_id"] != "test-1" {
		t.Fatalf("unexpected filter id: %v", call.filter["_id"])
	}
	slots, ok := call.filter["slots"].(bson.M)
	if !ok || slots["$gt"] != 0 {
		t.Fatalf("decrement must be guarded by slots > 0, got filter %v", call.filter)
	}
	inc, ok := call.update["$inc"].(bson.M)
	if !ok || inc["slots"] != -1 {
		t.Fatalf("expected $inc slots -1, got update %v", call.update)
	}
}

func TestReserveSlotExhausted(t *testing.T) {
	tests := &fakeSlotUpdater{results: []*mongo.UpdateResult{{MatchedCount: 0, ModifiedCount: 0}}}

	err := reserveSlot(context.Background(), tests, "test-1")
	if err != errNoSlots {
		t.Fatalf("expected errNoSlots at zero slots, got %v", err)
	}
}

func TestReserveSlotDatabaseError(t *testing.T) {
	boom := errors.New("boom")
	tests := &fakeSlotUpdater{errs: []error{boom}}

	if err := reserveSlot(context.Background(), tests, "test-1"); err != boom {
		t.Fatalf("expected database error to pass through, got %v", err)
	}
}

func TestReleaseSlotIncrements(t *testing.T) {
	tests := &fakeSlotUpdater{results: []*mongo.UpdateResult{{MatchedCount: 1, ModifiedCount: 1}}}

	if err := releaseSlot(context.Background(), tests, "test-1"); err != nil {
		t.Fatalf("releaseSlot error: %v", err)
	}

	call := tests.calls[0]
	if call.filter["_id"] != "test-1" {
		t.Fatalf("unexpected filter: %v", call.filter)
	}
	if _, guarded := call.filter["slots"]; guarded {
		t.Fatalf("restore must not be conditional on remaining slots: %v", call.filter)
	}
	inc, ok := call.update["$inc"].(bson.M)
	if !ok || inc["slots"] != 1 {
		t.Fatalf("expected $inc slots +1, got update %v", call.update)
	}
}

func TestReportFilterBindsIDAndEmail(t *testing.T) {
	filter := reportFilter("appt-1", "patient@example.com")

	if filter["_id"] != "appt-1" {
		t.Fatalf("unexpected id: %v", filter["_id"])
	}
	if filter["user.email"] != "patient@example.com" {
		t.Fatalf("filter must scope to the owning email, got %v", filter)
	}
	if len(filter) != 2 {
		t.Fatalf("filter must hold exactly id and email, got %v", filter)
	}
}
