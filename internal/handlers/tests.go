package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"diagnoease-backend/internal/httpx"
	"diagnoease-backend/internal/models"
	"diagnoease-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TestRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Image       string  `json:"image" validate:"omitempty,url"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,isodate"`
	Slots       int     `json:"slots" validate:"required,gte=0"`
}

type UpdateTestRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Image       *string  `json:"image" validate:"omitempty,url"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Date        *string  `json:"date" validate:"omitempty,isodate"`
	Slots       *int     `json:"slots" validate:"omitempty,gte=0"`
}

type availableTestsQuery struct {
	FilterDate string `validate:"omitempty,isodate"`
}

func (s *Server) CreateTest(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req TestRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("tests create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("tests create: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	test := models.Test{
		ID:          primitive.NewObjectID().Hex(),
		Name:        strings.TrimSpace(req.Name),
		Image:       req.Image,
		Description: req.Description,
		Price:       req.Price,
		Date:        req.Date,
		Slots:       req.Slots,
		CreatedAt:   time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Tests.InsertOne(ctx, test); err != nil {
		log.Error("tests create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests create: ok", slog.String("test_id", test.ID), slog.String("name", test.Name))
	transport.WriteJSON(w, http.StatusCreated, test)
}

func (s *Server) ListTests(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.Cols.Tests.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error("tests list: database error", slog.String("error", err.Error()))
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
		log.Error("tests list: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

// AvailableTests is the public paginated catalog. Without a filter it shows
// tests whose date is still ahead of now; with filterDate it shows that one
// UTC day. The full matching count rides along so the frontend can page.
func (s *Server) AvailableTests(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	skip, limit, err := httpx.ParsePageSize(r.URL.Query(), 6, 50)
	if err != nil {
		log.Warn("tests available: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	q := availableTestsQuery{FilterDate: strings.TrimSpace(r.URL.Query().Get("filterDate"))}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("tests available: invalid filter date")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	filter := bson.M{"date": bson.M{"$gte": time.Now().UTC().Format(isoMillis)}}
	if q.FilterDate != "" {
		start, end, err := dayRangeUTC(q.FilterDate)
		if err != nil {
			log.Warn("tests available: invalid filter date", slog.String("filterDate", q.FilterDate))
			transport.WriteError(w, http.StatusBadRequest, "invalid filter date", nil)
			return
		}
		filter = bson.M{"date": bson.M{"$gte": start, "$lte": end}}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := s.Cols.Tests.Find(ctx, filter, opts)
	if err != nil {
		log.Error("tests available: database error", slog.String("error", err.Error()))
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
		log.Error("tests available: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	total, err := s.Cols.Tests.CountDocuments(ctx, filter)
	if err != nil {
		log.Error("tests available: count error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests available: ok", slog.Int("count", len(items)), slog.Int64("total", total))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       items,
		"totalTests": total,
	})
}

// GetTest returns the test detail, or null with a 200 when no record exists.
func (s *Server) GetTest(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("tests get: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var doc bson.M
	if err := s.Cols.Tests.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			log.Info("tests get: no record", slog.String("test_id", id))
			transport.WriteJSON(w, http.StatusOK, nil)
			return
		}
		log.Error("tests get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests get: ok", slog.String("test_id", id))
	transport.WriteJSON(w, http.StatusOK, normalizeID(doc))
}

func (s *Server) UpdateTest(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("tests update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateTestRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("tests update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("tests update: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Date != nil {
		set["date"] = *req.Date
	}
	if req.Slots != nil {
		set["slots"] = *req.Slots
	}
	if len(set) == 0 {
		log.Warn("tests update: empty update")
		transport.WriteError(w, http.StatusBadRequest, "no fields to update", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Tests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error("tests update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests update: ok", slog.String("test_id", id), slog.Int64("matched", res.MatchedCount))
	transport.WriteJSON(w, http.StatusOK, map[string]int64{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	})
}

// DeleteTest removes the test by id. Deleting an already-deleted test is not
// an error; the response carries deletedCount 0.
func (s *Server) DeleteTest(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("tests delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Tests.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("tests delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("tests delete: ok", slog.String("test_id", id), slog.Int64("deleted", res.DeletedCount))
	transport.WriteJSON(w, http.StatusOK, map[string]int64{"deletedCount": res.DeletedCount})
}

// isoMillis matches how the frontend stores test dates (Date.toISOString),
// so range bounds compare lexicographically against stored values.
const isoMillis = "2006-01-02T15:04:05.000Z"

// dayRangeUTC expands a date to the bounds of that UTC day. Offset
// timestamps are converted to UTC first, so the day is the instant's UTC day
// rather than its local civil day.
func dayRangeUTC(dateStr string) (string, string, error) {
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		day, err = time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return "", "", err
		}
	}
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start.Format(isoMillis), end.Format(isoMillis), nil
}
