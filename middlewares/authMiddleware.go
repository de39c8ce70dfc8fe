package middlewares

import (
	"net/http"
	"strings"

	"urbanfix-be/config"
	authUtils "urbanfix-be/utils"

	"github.com/gin-gonic/gin"
)

// BlocklistPrefix namespaces revoked tokens in Redis.
const BlocklistPrefix = "token_blocklist:"

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "No authorization token provided"})
			c.Abort()
			return
		}

		// Extracting token from "Bearer <token>" format
		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		userID, err := authUtils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid authorization token"})
			c.Abort()
			return
		}

		// Tokens revoked by logout sit in the Redis blocklist until expiry.
		if config.RedisClient != nil {
			exists, err := config.RedisClient.Exists(config.Ctx, BlocklistPrefix+tokenString).Result()
			if err == nil && exists > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Token has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", userID)
		c.Set("token", tokenString)

		c.Next()
	}
}
