package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"urbanfix-be/config"
	"urbanfix-be/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxPhotosPerReport is the submission-time cap enforced at the boundary.
const maxPhotosPerReport = 5

// UploadDir returns where uploaded report photos are stored.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

type reportInput struct {
	Type        string
	Description string
	Location    models.Location
	Photos      []string
}

// CreateReport handles report submission, as JSON or as multipart with
// photo files. Validation happens before anything is written; a failed
// insert removes any photos already saved so no orphans are left behind.
func CreateReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	createdByID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid user ID")
		return
	}

	var input reportInput
	var savedFiles []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input, savedFiles, err = bindMultipartReport(c)
	} else {
		err = bindJSONReport(c, &input)
	}
	if err != nil {
		removeFiles(savedFiles)
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if input.Photos == nil {
		input.Photos = []string{}
	}

	now := time.Now()
	report := models.Report{
		ID:          primitive.NewObjectID(),
		Type:        models.IssueType(input.Type),
		Description: input.Description,
		Location:    input.Location,
		Photos:      input.Photos,
		Status:      models.StatusOpen,
		UserID:      createdByID,
		Votes:       0,
		Views:       0,
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	reportCollection := config.GetCollection("reports")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := reportCollection.InsertOne(ctx, report); err != nil {
		removeFiles(savedFiles)
		fail(c, http.StatusInternalServerError, "internal", "Failed to create report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

func bindJSONReport(c *gin.Context, input *reportInput) error {
	var body struct {
		Type        string          `json:"type" binding:"required"`
		Description string          `json:"description" binding:"required,max=1000"`
		Location    models.Location `json:"location" binding:"required"`
		Photos      []string        `json:"photos,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return err
	}

	input.Type = body.Type
	input.Description = body.Description
	input.Location = body.Location
	input.Photos = body.Photos

	return validateReportInput(input)
}

// bindMultipartReport parses the client's form encoding: scalar fields plus
// location[...] keys and repeated "photos" file parts. Returned savedFiles
// lists paths already written to disk, for cleanup on a later failure.
func bindMultipartReport(c *gin.Context) (reportInput, []string, error) {
	var input reportInput
	input.Type = c.PostForm("type")
	input.Description = c.PostForm("description")
	input.Location = models.Location{
		Address: c.PostForm("location[address]"),
		City:    c.PostForm("location[city]"),
		State:   c.PostForm("location[state]"),
	}

	if raw := c.PostForm("location[coordinates]"); raw != "" {
		var coords []float64
		if err := json.Unmarshal([]byte(raw), &coords); err != nil {
			return input, nil, errInvalidCoordinates
		}
		input.Location.Coordinates = &coords
	}

	if err := validateReportInput(&input); err != nil {
		return input, nil, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, nil, err
	}

	files := form.File["photos"]
	if len(files) > maxPhotosPerReport {
		return input, nil, errTooManyPhotos
	}

	dir := UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return input, nil, err
	}

	var saved []string
	for _, file := range files {
		name := xid.New().String() + filepath.Ext(file.Filename)
		dst := filepath.Join(dir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			removeFiles(saved)
			return input, nil, err
		}
		saved = append(saved, dst)
		input.Photos = append(input.Photos, "/uploads/"+name)
	}

	return input, saved, nil
}

var (
	errInvalidCoordinates = validationError("location[coordinates] must be a JSON [longitude, latitude] array")
	errTooManyPhotos      = validationError("at most 5 photos per report")
)

type validationError string

func (e validationError) Error() string { return string(e) }

func validateReportInput(input *reportInput) error {
	if !models.ValidIssueType(input.Type) {
		return validationError("Invalid report type")
	}
	if strings.TrimSpace(input.Description) == "" {
		return validationError("description is required")
	}
	input.Location.Normalize()
	return input.Location.Validate()
}

func removeFiles(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

// parsePagination clamps page to >=1 and limit into [1,100]. Absent or
// non-numeric values fall back to the defaults before clamping.
func parsePagination(c *gin.Context) (page, limit int) {
	page, limit = 1, 10
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// sortOptions maps the sort query parameter to a server-side order, so
// vote/view ranking covers the whole collection and not just one page.
func sortOptions(sortKey string) bson.D {
	switch sortKey {
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	case "votes":
		return bson.D{{Key: "votes", Value: -1}, {Key: "createdAt", Value: -1}}
	case "views":
		return bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	case "newest":
		fallthrough
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// buildReportFilter translates list query parameters into a Mongo filter.
func buildReportFilter(c *gin.Context) (bson.M, error) {
	filter := bson.M{}

	if city := strings.TrimSpace(c.Query("city")); city != "" {
		filter["location.city"] = city
	}
	if state := strings.TrimSpace(c.Query("state")); state != "" {
		filter["location.state"] = strings.ToUpper(state)
	}
	if t := c.Query("type"); t != "" {
		if !models.ValidIssueType(t) {
			return nil, validationError("Invalid report type")
		}
		filter["type"] = t
	}
	if s := c.Query("status"); s != "" {
		if !models.ValidStatus(s) {
			return nil, validationError("Invalid report status")
		}
		filter["status"] = s
	}

	return filter, nil
}

// GetReports lists reports with filters {city,state,type,status},
// pagination and a server-side sort.
func GetReports(c *gin.Context) {
	filter, err := buildReportFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	listReports(c, filter)
}

// GetMyReports lists the caller's own reports with the same pagination
// contract as the community listing.
func GetMyReports(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	userObjID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid user ID")
		return
	}

	listReports(c, bson.M{"userId": userObjID})
}

func listReports(c *gin.Context, filter bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, limit := parsePagination(c)
	skip := (page - 1) * limit

	reportCollection := config.GetCollection("reports")

	totalCount, err := reportCollection.CountDocuments(ctx, filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to count reports")
		return
	}

	findOptions := options.Find().
		SetSort(sortOptions(c.DefaultQuery("sort", "newest"))).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := reportCollection.Find(ctx, filter, findOptions)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to retrieve reports")
		return
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to decode reports")
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"pagination": gin.H{
			"currentPage":  page,
			"totalPages":   totalPages,
			"totalReports": totalCount,
			"limit":        limit,
		},
	})
}

// GetReportByID fetches one report and counts the view. The view counter
// is bumped with an atomic $inc as part of the fetch itself.
func GetReportByID(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid report ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")

	var report models.Report
	err = reportCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, http.StatusNotFound, "not_found", "Report not found")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "Failed to retrieve report")
		}
		return
	}

	userHasVoted := false
	if userIDStr, exists := c.Get("user_id"); exists {
		if currentUserID, err := primitive.ObjectIDFromHex(userIDStr.(string)); err == nil {
			voteCollection := config.GetCollection("votes")
			count, err := voteCollection.CountDocuments(ctx, bson.M{
				"report": reportID,
				"user":   currentUserID,
			})
			if err == nil && count > 0 {
				userHasVoted = true
			}
		}
	}

	type reportWithVoted struct {
		models.Report
		UserHasVoted bool `json:"userHasVoted"`
	}

	c.JSON(http.StatusOK, reportWithVoted{Report: report, UserHasVoted: userHasVoted})
}

// AddComment appends a comment carrying a snapshot of the author. The
// append is a single atomic $push so concurrent comments are all retained.
func AddComment(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid report ID")
		return
	}

	var input struct {
		Text string `json:"text" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		fail(c, http.StatusBadRequest, "validation_error", "text is required")
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      input.Text,
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")
	res, err := reportCollection.UpdateOne(ctx, bson.M{"_id": reportID}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to add comment")
		return
	}
	if res.MatchedCount == 0 {
		fail(c, http.StatusNotFound, "not_found", "Report not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// UpdateReportStatus transitions a report along the status table. Only
// CITY_HALL accounts may call it. The write is a compare-and-set against
// the status that was read, so concurrent transitions cannot both win.
func UpdateReportStatus(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid report ID")
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if !models.ValidStatus(input.Status) {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid report status")
		return
	}
	newStatus := models.ReportStatus(input.Status)

	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.CityHall {
		fail(c, http.StatusForbidden, "forbidden", models.ErrForbidden.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, http.StatusNotFound, "not_found", "Report not found")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "Failed to retrieve report")
		}
		return
	}

	if err := models.AuthorizeTransition(user.Role, report.Status, newStatus); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "invalid_transition",
			"message":       err.Error(),
			"currentStatus": report.Status,
		})
		return
	}

	res, err := reportCollection.UpdateOne(
		ctx,
		bson.M{"_id": reportID, "status": report.Status},
		bson.M{"$set": bson.M{"status": newStatus, "updatedAt": time.Now()}},
	)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to update status")
		return
	}
	if res.MatchedCount == 0 {
		// Status moved under us; report the fresh value so the caller can
		// re-evaluate and retry.
		var current models.Report
		currentStatus := report.Status
		if err := reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&current); err == nil {
			currentStatus = current.Status
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":         "conflict",
			"message":       "Report status changed concurrently",
			"currentStatus": currentStatus,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated successfully",
		"status":  newStatus,
	})
}

// VoteOnReport records the caller's vote. The (report, user) ledger has a
// unique index, so a repeat vote is idempotent: it does not increment and
// returns the current total. The counter itself is an atomic $inc.
func VoteOnReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid report ID")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	userObjID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reportCollection := config.GetCollection("reports")
	voteCollection := config.GetCollection("votes")

	var report models.Report
	err = reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, http.StatusNotFound, "not_found", "Report not found")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "Failed to retrieve report")
		}
		return
	}

	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		Report:    reportID,
		User:      userObjID,
		CreatedAt: time.Now(),
	}

	_, err = voteCollection.InsertOne(ctx, vote)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Re-read so the reply carries the current total, not the one
			// from before concurrent first-votes landed.
			votes := report.Votes
			var current models.Report
			if err := reportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&current); err == nil {
				votes = current.Votes
			}
			c.JSON(http.StatusOK, voteReply("Vote already recorded", votes))
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "Failed to cast vote")
		return
	}

	var updated models.Report
	err = reportCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		bson.M{
			"$inc": bson.M{"votes": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to update vote count")
		return
	}

	c.JSON(http.StatusOK, voteReply("Vote cast successfully", updated.Votes))
}

// voteReply builds the vote endpoint's response body. The votes value is
// the authoritative server-side total the caller must reconcile against.
func voteReply(message string, votes int64) gin.H {
	return gin.H{
		"message":      message,
		"votes":        votes,
		"userHasVoted": true,
	}
}
