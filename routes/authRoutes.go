package routes

import (
	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", controllers.Signup)
		auth.POST("/signin", controllers.Signin)
		auth.GET("/profile", middlewares.AuthMiddleware(), controllers.GetProfile)
		auth.PATCH("/profile", middlewares.AuthMiddleware(), controllers.UpdateProfile)
		auth.PATCH("/change-password", middlewares.AuthMiddleware(), controllers.ChangePassword)
		auth.POST("/logout", middlewares.AuthMiddleware(), controllers.Logout)
	}
}
