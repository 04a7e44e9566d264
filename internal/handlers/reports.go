package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"diagnoease-backend/internal/stats"
	"diagnoease-backend/internal/transport"

	"go.mongodb.org/mongo-driver/bson"
)

// featuredTestsPipeline groups appointments by booked test, carries the
// first-seen snapshot fields of each group, and keeps the five most booked.
func featuredTestsPipeline() []bson.D {
	return []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$testData._id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$testData.name"}}},
			{Key: "image", Value: bson.D{{Key: "$first", Value: "$testData.image"}}},
			{Key: "description", Value: bson.D{{Key: "$first", Value: "$testData.description"}}},
			{Key: "price", Value: bson.D{{Key: "$first", Value: "$testData.price"}}},
			{Key: "date", Value: bson.D{{Key: "$first", Value: "$testData.date"}}},
			{Key: "slots", Value: bson.D{{Key: "$first", Value: "$testData.slots"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: 5}},
	}
}

// bookedTestsPipeline ranks the ten most booked tests for the dashboard.
func bookedTestsPipeline() []bson.D {
	return []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$testData._id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$testData.name"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: 10}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "name", Value: 1},
			{Key: "count", Value: 1},
		}}},
	}
}

// statusCountsPipeline counts appointments per delivery status.
func statusCountsPipeline() []bson.D {
	return []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "status", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

// FeaturedTests returns the most booked tests. Computed on demand; derived
// reports are deliberately uncached.
func (s *Server) FeaturedTests(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	cursor, err := s.Cols.Appointments.Aggregate(ctx, featuredTestsPipeline())
	if err != nil {
		log.Error("featured tests: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]bson.M, 0, 5)
	if err := cursor.All(ctx, &items); err != nil {
		log.Error("featured tests: decode error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("featured tests: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

// AdminStats builds the dashboard chart series: top ten booked tests and a
// delivery-status breakdown, each with its header row prepended.
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	bookedCursor, err := s.Cols.Appointments.Aggregate(ctx, bookedTestsPipeline())
	if err != nil {
		log.Error("admin stat: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer bookedCursor.Close(ctx)

	var booked []stats.BookedTest
	if err := bookedCursor.All(ctx, &booked); err != nil {
		log.Error("admin stat: decode error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	statusCursor, err := s.Cols.Appointments.Aggregate(ctx, statusCountsPipeline())
	if err != nil {
		log.Error("admin stat: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer statusCursor.Close(ctx)

	var statuses []stats.StatusCount
	if err := statusCursor.All(ctx, &statuses); err != nil {
		log.Error("admin stat: decode error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin stat: ok", slog.Int("tests", len(booked)), slog.Int("statuses", len(statuses)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"mostlyBookedChartData":  stats.BookedTestChart(booked),
		"deliverySatusChartData": stats.DeliveryStatusChart(statuses),
	})
}
