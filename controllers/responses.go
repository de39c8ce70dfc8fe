package controllers

import "github.com/gin-gonic/gin"

// fail writes the error envelope every endpoint uses: a machine-readable
// kind plus a human-readable message.
func fail(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"error": kind, "message": message})
}
