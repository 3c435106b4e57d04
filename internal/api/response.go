package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response codes carried in the envelope alongside the HTTP status
const (
	CodeOK              = 0
	CodeInvalidRequest  = 40001
	CodeValidation      = 40002
	CodeNotFound        = 40401
	CodeConflict        = 40901
	CodeAlreadyTerminal = 40902
	CodeInternal        = 50000
)

// Response is the envelope of every API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

// Error writes an error envelope
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

// ErrorWithData writes an error envelope carrying structured data, such as conflicting records
func ErrorWithData(c *gin.Context, httpStatus int, code int, message string, data interface{}) {
	c.JSON(httpStatus, Response{Code: code, Message: message, Data: data})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message, details string) {
	c.JSON(http.StatusBadRequest, Response{Code: code, Message: message, Details: details})
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}
