package common

import "github.com/gin-gonic/gin"

// Fail writes the error envelope and aborts the chain. detail mirrors message
// for clients that only read detail.
func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"detail":  msg,
		"data":    nil,
	})
}
