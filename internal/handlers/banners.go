package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"diagnoease-backend/internal/models"
	"diagnoease-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activeBannerCacheKey = "banners:active"

type BannerRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Image      string `json:"image" validate:"required,url"`
	Title      string `json:"title" validate:"required,max=200"`
	Text       string `json:"text" validate:"required"`
	CouponCode string `json:"couponCode" validate:"omitempty,max=40"`
	CouponRate int    `json:"couponRate" validate:"omitempty,gte=0,lte=100"`
}

func (s *Server) CreateBanner(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req BannerRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("banners create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("banners create: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	banner := models.Banner{
		ID:         primitive.NewObjectID().Hex(),
		Name:       strings.TrimSpace(req.Name),
		Image:      req.Image,
		Title:      strings.TrimSpace(req.Title),
		Text:       req.Text,
		CouponCode: req.CouponCode,
		CouponRate: req.CouponRate,
		IsActive:   false,
		CreatedAt:  time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Banners.InsertOne(ctx, banner); err != nil {
		log.Error("banners create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("banners create: ok", slog.String("banner_id", banner.ID))
	transport.WriteJSON(w, http.StatusCreated, banner)
}

func (s *Server) ListBanners(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.Cols.Banners.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error("banners list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err == nil {
			items = append(items, normalizeID(doc))
		}
	}
	if err := cursor.Err(); err != nil {
		log.Error("banners list: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("banners list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("banners delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Banners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("banners delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.Delete(r.Context(), activeBannerCacheKey)
	}

	log.Info("banners delete: ok", slog.String("banner_id", id), slog.Int64("deleted", res.DeletedCount))
	transport.WriteJSON(w, http.StatusOK, map[string]int64{"deletedCount": res.DeletedCount})
}

// bannerWriter is the slice of the banners collection the activation
// sequence needs.
type bannerWriter interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

var errBannerNotFound = errors.New("banner not found")

// setActiveBanner deactivates every other banner before activating the
// target. A failure between the two writes leaves zero banners active, never
// two, so at most one banner is ever active no matter where the sequence
// stops. Zero matched on the second write means the target does not exist.
func setActiveBanner(ctx context.Context, banners bannerWriter, id string) (*mongo.UpdateResult, error) {
	if _, err := banners.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": id}, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false}},
	); err != nil {
		return nil, err
	}

	res, err := banners.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": true}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, errBannerNotFound
	}
	return res, nil
}

// ActivateBanner makes the target the single active banner.
func (s *Server) ActivateBanner(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("banners activate: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := setActiveBanner(ctx, s.Cols.Banners, id)
	if err != nil {
		if err == errBannerNotFound {
			log.Warn("banners activate: not found", slog.String("banner_id", id))
			transport.WriteError(w, http.StatusNotFound, "banner not found", nil)
			return
		}
		log.Error("banners activate: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.Delete(r.Context(), activeBannerCacheKey)
	}

	log.Info("banners activate: ok", slog.String("banner_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	})
}

// ActiveBanner returns the currently active banner, or null with a 200 when
// none is active.
func (s *Server) ActiveBanner(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), activeBannerCacheKey); err == nil && ok {
			log.Info("banners active: cache hit")
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var doc bson.M
	if err := s.Cols.Banners.FindOne(ctx, bson.M{"isActive": true}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			log.Info("banners active: none")
			transport.WriteJSON(w, http.StatusOK, nil)
			return
		}
		log.Error("banners active: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	banner := normalizeID(doc)
	if payload, err := encodeJSON(banner); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), activeBannerCacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info("banners active: ok")
	transport.WriteJSON(w, http.StatusOK, banner)
}
