package main

import (
	"log"
	"net/http"
	"os"

	"urbanfix-be/config"
	"urbanfix-be/controllers"
	"urbanfix-be/models"
	"urbanfix-be/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}

	log.Println("MongoDB connection established successfully!")

	if err := models.EnsureVoteIndex(config.GetCollection("votes")); err != nil {
		log.Fatalf("Failed to create vote index: %v", err)
	}
	if err := models.EnsureUserIndex(config.GetCollection("users")); err != nil {
		log.Fatalf("Failed to create user index: %v", err)
	}

	config.ConnectRedis()

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Static("/uploads", controllers.UploadDir())

	routes.AuthRoutes(r)
	routes.ReportRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
