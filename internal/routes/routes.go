package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apexsim/apexsim-golang/internal/handlers"
)

// CORSMiddleware allows the React storefront dev server to talk to the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SetupRouter wires the catalog API.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:sku", h.GetProductBySKU)
		v1.GET("/categories", h.GetCategories)

		admin := v1.Group("/admin")
		{
			admin.POST("/products/import", h.ImportProducts)
		}
	}

	return router
}
