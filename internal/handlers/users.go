package handlers

import (
	"context"
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

type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,max=120"`
	Avatar     string `json:"avatar" validate:"omitempty,url"`
	BloodGroup string `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Avatar     *string `json:"avatar" validate:"omitempty,url"`
	BloodGroup *string `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	District   *string `json:"district"`
	Upazila    *string `json:"upazila"`
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("users create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("users create: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	now := time.Now().In(s.Cfg.Timezone)
	user := models.User{
		ID:         primitive.NewObjectID().Hex(),
		Email:      req.Email,
		Name:       req.Name,
		Avatar:     req.Avatar,
		BloodGroup: req.BloodGroup,
		District:   req.District,
		Upazila:    req.Upazila,
		Role:       models.UserRoleUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("users create: email exists", slog.String("email", req.Email))
			transport.WriteError(w, http.StatusConflict, "email already registered", nil)
			return
		}
		log.Error("users create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("users create: ok", slog.String("user_id", user.ID), slog.String("email", user.Email))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.Cols.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error("users list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err == nil {
			delete(doc, "passwordHash")
			items = append(items, normalizeID(doc))
		}
	}
	if err := cursor.Err(); err != nil {
		log.Error("users list: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("users list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

// GetUserByEmail returns the stored profile, or null with a 200 when no record
// exists. Callers distinguish the empty result themselves.
func (s *Server) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	email := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "email")))
	if email == "" {
		log.Warn("users get: missing email")
		transport.WriteError(w, http.StatusBadRequest, "missing email", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var doc bson.M
	if err := s.Cols.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			log.Info("users get: no record", slog.String("email", email))
			transport.WriteJSON(w, http.StatusOK, nil)
			return
		}
		log.Error("users get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	delete(doc, "passwordHash")
	log.Info("users get: ok", slog.String("email", email))
	transport.WriteJSON(w, http.StatusOK, normalizeID(doc))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("users update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("users update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("users update: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if req.BloodGroup != nil {
		set["bloodGroup"] = *req.BloodGroup
	}
	if req.District != nil {
		set["district"] = *req.District
	}
	if req.Upazila != nil {
		set["upazila"] = *req.Upazila
	}
	if len(set) == 0 {
		log.Warn("users update: empty update")
		transport.WriteError(w, http.StatusBadRequest, "no fields to update", nil)
		return
	}
	set["updatedAt"] = time.Now().In(s.Cfg.Timezone)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error("users update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("users update: ok", slog.String("user_id", id), slog.Int64("matched", res.MatchedCount))
	transport.WriteJSON(w, http.StatusOK, map[string]int64{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	})
}
