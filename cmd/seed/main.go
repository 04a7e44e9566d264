package main

import (
	"context"
	"log"
	"os"
	"time"

	"diagnoease-backend/internal/auth"
	"diagnoease-backend/internal/cache"
	"diagnoease-backend/internal/config"
	"diagnoease-backend/internal/db"
	"diagnoease-backend/internal/handlers"
	"diagnoease-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedDistrict struct {
	Name     string
	Upazilas []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	districts := []seedDistrict{
		{Name: "Dhaka", Upazilas: []string{"Savar", "Dhamrai", "Keraniganj", "Nawabganj"}},
		{Name: "Chattogram", Upazilas: []string{"Anwara", "Banshkhali", "Boalkhali", "Chandanaish"}},
		{Name: "Rajshahi", Upazilas: []string{"Bagha", "Bagmara", "Charghat", "Durgapur"}},
		{Name: "Khulna", Upazilas: []string{"Batiaghata", "Dacope", "Dumuria", "Dighalia"}},
		{Name: "Sylhet", Upazilas: []string{"Balaganj", "Beanibazar", "Bishwanath", "Companiganj"}},
	}

	for _, d := range districts {
		districtID, err := upsertDistrict(ctx, cols, d.Name)
		if err != nil {
			log.Fatalf("seed district %s: %v", d.Name, err)
		}
		for _, u := range d.Upazilas {
			if err := upsertUpazila(ctx, cols, districtID, u); err != nil {
				log.Fatalf("seed upazila %s: %v", u, err)
			}
		}
	}

	recommendations := []models.Recommendation{
		{Title: "Stay hydrated before blood tests", Text: "Drink plenty of water before sample collection unless told to fast."},
		{Title: "Fast before lipid profiles", Text: "A 10-12 hour fast gives reliable cholesterol and triglyceride readings."},
		{Title: "Bring previous reports", Text: "Earlier results help pathologists compare trends across visits."},
	}
	for _, rec := range recommendations {
		if err := upsertRecommendation(ctx, cols, rec); err != nil {
			log.Fatalf("seed recommendation %q: %v", rec.Title, err)
		}
	}

	// The API caches the reference lists whole; drop them so the next read
	// picks up the reseeded data.
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var store *cache.RedisCache
		if cfg.RedisURL != "" {
			store, err = cache.NewRedisFromURL(cfg.RedisURL)
			if err != nil {
				log.Fatalf("redis connect: %v", err)
			}
		} else {
			store = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err := store.DeletePrefix(ctx, handlers.LookupCachePrefix); err != nil {
			log.Printf("lookup cache invalidate failed: %v", err)
		} else {
			log.Println("lookup caches invalidated")
		}
	}

	adminEmail := envOrDefault("ADMIN_EMAIL", "")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		if err := seedAdminUser(ctx, cols, adminEmail, envOrDefault("ADMIN_NAME", "Administrator"), adminPassword, cfg.Timezone); err != nil {
			log.Fatalf("seed admin error for %s: %v", adminEmail, err)
		}
	} else {
		log.Println("seed admin: ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping")
	}

	log.Println("seed completed")
}

func upsertDistrict(ctx context.Context, cols *db.Collections, name string) (string, error) {
	id := primitive.NewObjectID().Hex()
	filter := bson.M{"name": name}
	update := bson.M{"$setOnInsert": bson.M{"_id": id, "name": name}}
	_, err := cols.Districts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", err
	}

	var doc models.District
	if err := cols.Districts.FindOne(ctx, filter).Decode(&doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func upsertUpazila(ctx context.Context, cols *db.Collections, districtID, name string) error {
	filter := bson.M{"districtId": districtID, "name": name}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        primitive.NewObjectID().Hex(),
		"districtId": districtID,
		"name":       name,
	}}
	_, err := cols.Upazilas.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func upsertRecommendation(ctx context.Context, cols *db.Collections, rec models.Recommendation) error {
	filter := bson.M{"title": rec.Title}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":   primitive.NewObjectID().Hex(),
		"title": rec.Title,
		"text":  rec.Text,
	}}
	_, err := cols.Recommendations.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func seedAdminUser(ctx context.Context, cols *db.Collections, email, name, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	filter := bson.M{"email": email}
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"role":         models.UserRoleAdmin,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"email":     email,
			"name":      name,
			"createdAt": now,
		},
	}
	_, err = cols.Users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
