package handlers

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeBannerWriter struct {
	ops        []string
	manyFilter bson.M
	oneFilter  bson.M
	manyErr    error
	oneErr     error
	oneMatched int64
}

func (f *fakeBannerWriter) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.ops = append(f.ops, "deactivateOthers")
	f.manyFilter = filter.(bson.M)
	return &mongo.UpdateResult{}, f.manyErr
}

func (f *fakeBannerWriter) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.ops = append(f.ops, "activateTarget")
	f.oneFilter = filter.(bson.M)
	return &mongo.UpdateResult{MatchedCount: f.oneMatched, ModifiedCount: f.oneMatched}, f.oneErr
}

func TestSetActiveBannerDeactivatesOthersFirst(t *testing.T) {
	banners := &fakeBannerWriter{oneMatched: 1}

	res, err := setActiveBanner(context.Background(), banners, "banner-1")
	if err != nil {
		t.Fatalf("setActiveBanner error: %v", err)
	}
	if res.MatchedCount != 1 {
		t.Fatalf("unexpected matched count: %d", res.MatchedCount)
	}

	if len(banners.ops) != 2 || banners.ops[0] != "deactivateOthers" || banners.ops[1] != "activateTarget" {
		t.Fatalf("expected deactivate before activate, got %v", banners.ops)
	}

	ne, ok := banners.manyFilter["_id"].(bson.M)
	if !ok || ne["$ne"] != "banner-1" {
		t.Fatalf("deactivation must exclude the target, got %v", banners.manyFilter)
	}
	if banners.manyFilter["isActive"] != true {
		t.Fatalf("deactivation must only touch active banners, got %v", banners.manyFilter)
	}
	if banners.oneFilter["_id"] != "banner-1" {
		t.Fatalf("unexpected activation filter: %v", banners.oneFilter)
	}
}

func TestSetActiveBannerMissingTarget(t *testing.T) {
	banners := &fakeBannerWriter{oneMatched: 0}

	if _, err := setActiveBanner(context.Background(), banners, "ghost"); err != errBannerNotFound {
		t.Fatalf("expected errBannerNotFound, got %v", err)
	}
}

func TestSetActiveBannerDeactivateFailureStopsSequence(t *testing.T) {
	boom := errors.New("boom")
	banners := &fakeBannerWriter{manyErr: boom}

	if _, err := setActiveBanner(context.Background(), banners, "banner-1"); err != boom {
		t.Fatalf("expected deactivation error to pass through, got %v", err)
	}
	// The target is never flipped, so a failure can only reduce the number of
	// active banners, never leave two.
	if len(banners.ops) != 1 || banners.ops[0] != "deactivateOthers" {
		t.Fatalf("activation must not run after a failed deactivation, got %v", banners.ops)
	}
}
