package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"urbanfix-be/config"
	"urbanfix-be/middlewares"
	"urbanfix-be/models"
	authUtils "urbanfix-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Signup handles account creation and returns {token, user}
func Signup(c *gin.Context) {
	var input struct {
		Name     string          `json:"name" binding:"required,max=50"`
		Email    string          `json:"email" binding:"required,email"`
		Password string          `json:"password" binding:"required,min=6"`
		Role     *string         `json:"role,omitempty"`
		Location models.Location `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	role := models.Citizen
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			fail(c, http.StatusBadRequest, "validation_error", "Invalid role")
			return
		}
		role = models.UserRole(*input.Role)
	}

	input.Location.Normalize()
	if err := input.Location.Validate(); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		log.Println("Error checking existing user:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}
	if count > 0 {
		fail(c, http.StatusBadRequest, "validation_error", "User with this email already exists")
		return
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		Role:      role,
		Verified:  models.VerifiedPending,
		Location:  input.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		log.Println("Error inserting user:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}

	token, err := authUtils.GenerateAndSetToken(user.ID.Hex())
	if err != nil {
		log.Println("Error generating token:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Signin authenticates a user and returns {token, user}
func Signin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		fail(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	if !user.ComparePassword(input.Password) {
		fail(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	token, err := authUtils.GenerateAndSetToken(user.ID.Hex())
	if err != nil {
		log.Println("Error generating token:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile retrieves the authenticated user's information
func GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's name and/or location
func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid user ID")
		return
	}

	var input struct {
		Name     *string          `json:"name,omitempty"`
		Location *models.Location `json:"location,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		if *input.Name == "" {
			fail(c, http.StatusBadRequest, "validation_error", "name must not be empty")
			return
		}
		update["name"] = *input.Name
	}
	if input.Location != nil {
		input.Location.Normalize()
		if err := input.Location.Validate(); err != nil {
			fail(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		update["location"] = *input.Location
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, http.StatusNotFound, "not_found", "User not found")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword rotates the password after verifying the current one
func ChangePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.ComparePassword(input.CurrentPassword) {
		fail(c, http.StatusUnauthorized, "unauthorized", "Current password is incorrect")
		return
	}

	user.Password = input.NewPassword
	if err := user.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		fail(c, http.StatusInternalServerError, "internal", "Something went wrong")
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := userCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"password": user.Password, "updatedAt": time.Now()},
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// Logout revokes the presented token until it would have expired. Clients
// clear their local session regardless of the outcome here.
func Logout(c *gin.Context) {
	tokenVal, _ := c.Get("token")
	tokenString, _ := tokenVal.(string)

	if config.RedisClient != nil && tokenString != "" {
		err := config.RedisClient.Set(config.Ctx, middlewares.BlocklistPrefix+tokenString, "1", authUtils.TokenTTL).Err()
		if err != nil {
			log.Println("Error blocklisting token:", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// currentUser loads the authenticated user, writing the error response
// itself when that fails.
func currentUser(c *gin.Context) (models.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return models.User{}, false
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		fail(c, http.StatusBadRequest, "validation_error", "Invalid user ID")
		return models.User{}, false
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		fail(c, http.StatusNotFound, "not_found", "User not found")
		return models.User{}, false
	}

	return user, true
}
