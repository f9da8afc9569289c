package devserver

import "github.com/gin-gonic/gin"

// response is the envelope every endpoint answers with.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, response{Success: true, Message: message, Data: data})
}

func respondErr(c *gin.Context, status int, message string) {
	c.JSON(status, response{Success: false, Message: message, Data: nil})
}
