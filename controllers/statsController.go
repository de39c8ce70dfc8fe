package controllers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"urbanfix-be/config"
	"urbanfix-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopReportedItem is one (type, city, state) group of the top-reported
// aggregation, annotated with the group's most recent report.
type TopReportedItem struct {
	Type         models.IssueType     `json:"type"`
	City         string               `json:"city"`
	State        string               `json:"state"`
	Count        int64                `json:"count"`
	LatestReport LatestReportSummary  `json:"latestReport"`
	ReportIDs    []primitive.ObjectID `json:"reportIds"`
}

// LatestReportSummary is the trimmed view of a group's newest report.
type LatestReportSummary struct {
	ID          primitive.ObjectID  `json:"_id"`
	CreatedAt   time.Time           `json:"createdAt"`
	Description string              `json:"description"`
	Photos      []string            `json:"photos"`
	Status      models.ReportStatus `json:"status"`
}

// sortTopReported orders groups by descending count, ties broken by the
// most recent latestReport.createdAt, then by group key so the order is
// fully deterministic.
func sortTopReported(items []TopReportedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		if !items[i].LatestReport.CreatedAt.Equal(items[j].LatestReport.CreatedAt) {
			return items[i].LatestReport.CreatedAt.After(items[j].LatestReport.CreatedAt)
		}
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		if items[i].City != items[j].City {
			return items[i].City < items[j].City
		}
		return items[i].State < items[j].State
	})
}

// GetTopReported groups reports by (type, city, state) and returns the
// top-N groups by report count. Computed live per call.
func GetTopReported(c *gin.Context) {
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	match := bson.M{}
	if t := c.Query("type"); t != "" {
		if !models.ValidIssueType(t) {
			fail(c, http.StatusBadRequest, "validation_error", "Invalid report type")
			return
		}
		match["type"] = t
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Newest-first sort before grouping lets $first pick each group's
	// latest report.
	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{"createdAt": -1}},
		{"$group": bson.M{
			"_id": bson.M{
				"type":  "$type",
				"city":  "$location.city",
				"state": "$location.state",
			},
			"count":             bson.M{"$sum": 1},
			"latestId":          bson.M{"$first": "$_id"},
			"latestCreatedAt":   bson.M{"$first": "$createdAt"},
			"latestDescription": bson.M{"$first": "$description"},
			"latestPhotos":      bson.M{"$first": "$photos"},
			"latestStatus":      bson.M{"$first": "$status"},
			"reportIds":         bson.M{"$push": "$_id"},
		}},
	}

	reportCollection := config.GetCollection("reports")
	cursor, err := reportCollection.Aggregate(ctx, pipeline)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to aggregate reports")
		return
	}
	defer cursor.Close(ctx)

	var groups []struct {
		ID struct {
			Type  models.IssueType `bson:"type"`
			City  string           `bson:"city"`
			State string           `bson:"state"`
		} `bson:"_id"`
		Count             int64                `bson:"count"`
		LatestID          primitive.ObjectID   `bson:"latestId"`
		LatestCreatedAt   time.Time            `bson:"latestCreatedAt"`
		LatestDescription string               `bson:"latestDescription"`
		LatestPhotos      []string             `bson:"latestPhotos"`
		LatestStatus      models.ReportStatus  `bson:"latestStatus"`
		ReportIDs         []primitive.ObjectID `bson:"reportIds"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to decode aggregation")
		return
	}

	items := make([]TopReportedItem, 0, len(groups))
	for _, g := range groups {
		photos := g.LatestPhotos
		if photos == nil {
			photos = []string{}
		}
		items = append(items, TopReportedItem{
			Type:  g.ID.Type,
			City:  g.ID.City,
			State: g.ID.State,
			Count: g.Count,
			LatestReport: LatestReportSummary{
				ID:          g.LatestID,
				CreatedAt:   g.LatestCreatedAt,
				Description: g.LatestDescription,
				Photos:      photos,
				Status:      g.LatestStatus,
			},
			ReportIDs: g.ReportIDs,
		})
	}

	sortTopReported(items)
	if len(items) > limit {
		items = items[:limit]
	}

	c.JSON(http.StatusOK, items)
}

// GetStatistics returns aggregate report counts by status, type and city.
func GetStatistics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")

	totalReports, err := reportCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to count reports")
		return
	}

	countBy := func(field string) (map[string]int64, error) {
		pipeline := []bson.M{
			{"$group": bson.M{
				"_id":   field,
				"count": bson.M{"$sum": 1},
			}},
		}
		cursor, err := reportCollection.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var rows []struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, err
		}

		counts := make(map[string]int64, len(rows))
		for _, row := range rows {
			counts[row.ID] = row.Count
		}
		return counts, nil
	}

	byStatus, err := countBy("$status")
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to aggregate by status")
		return
	}
	byType, err := countBy("$type")
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to aggregate by type")
		return
	}
	byCity, err := countBy("$location.city")
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to aggregate by city")
		return
	}

	// The client expects every enum key present, zeroed when unused.
	reportsByStatus := make(map[string]int64, len(models.ReportStatuses))
	for _, s := range models.ReportStatuses {
		reportsByStatus[string(s)] = byStatus[string(s)]
	}
	reportsByType := make(map[string]int64, len(models.IssueTypes))
	for _, t := range models.IssueTypes {
		reportsByType[string(t)] = byType[string(t)]
	}

	c.JSON(http.StatusOK, gin.H{
		"totalReports":    totalReports,
		"reportsByStatus": reportsByStatus,
		"reportsByType":   reportsByType,
		"reportsByCity":   byCity,
	})
}
