package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"diagnoease-backend/internal/models"
)

// RoleStore resolves a user's role from the users collection. The role guard
// reads it on every admin-gated request; there is no caching, so role changes
// take effect immediately.
type RoleStore struct {
	col *mongo.Collection
}

func NewRoleStore(col *mongo.Collection) *RoleStore {
	return &RoleStore{col: col}
}

func (s *RoleStore) RoleByEmail(ctx context.Context, email string) (string, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return user.Role, nil
}
