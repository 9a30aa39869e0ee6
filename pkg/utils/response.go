// Package utils reúne helpers de respuesta para los handlers REST de gin.
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Códigos de error estables para clientes.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL"
)

// APIError es el cuerpo de error: {"error": {"code": ..., "message": ...}}.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Respond envuelve data en {"data": ...}.
func Respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// Fail aborta la cadena de handlers con un APIError.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": APIError{Code: code, Message: message}})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, CodeBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, CodeNotFound, message)
}

func Internal(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, CodeInternal, message)
}
