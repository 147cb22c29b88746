package http

import "github.com/gin-gonic/gin"

// CodedErrorResponse adds a machine readable error code to the body.
func CodedErrorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}
