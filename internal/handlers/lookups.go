package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"diagnoease-backend/internal/transport"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Static reference collections change only when an operator reseeds them, so
// each list is cached whole under one key. Every key lives under
// LookupCachePrefix so the seeder can drop them all in one sweep.

// LookupCachePrefix covers every cached reference list. cmd/seed invalidates
// the whole prefix after reseeding.
const LookupCachePrefix = "lookups:"

const (
	districtsCacheKey       = LookupCachePrefix + "districts"
	upazilasCacheKey        = LookupCachePrefix + "upazilas"
	recommendationsCacheKey = LookupCachePrefix + "recommendations"
)

func (s *Server) ListDistricts(w http.ResponseWriter, r *http.Request) {
	s.listLookup(w, r, s.Cols.Districts, districtsCacheKey, "districts")
}

func (s *Server) ListUpazilas(w http.ResponseWriter, r *http.Request) {
	s.listLookup(w, r, s.Cols.Upazilas, upazilasCacheKey, "upazilas")
}

func (s *Server) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	s.listLookup(w, r, s.Cols.Recommendations, recommendationsCacheKey, "recommendations")
}

func (s *Server) listLookup(w http.ResponseWriter, r *http.Request, col *mongo.Collection, cacheKey, op string) {
	log := s.logWithRequest(r)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info(op + ": cache hit")
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			log.Error(op+": decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
		items = append(items, normalizeID(doc))
	}
	if err := cursor.Err(); err != nil {
		log.Error(op+": cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if payload, err := encodeJSON(items); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), cacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info(op+": ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}
