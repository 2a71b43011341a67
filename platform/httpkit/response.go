// Package httpkit provides HTTP response utilities.
package httpkit

import (
	"net/http"

	"requesthub_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Meta carries non-blocking information alongside a successful result.
type Meta struct {
	Warnings []string `json:"warnings,omitempty"`
}

// Envelope is the uniform result shape returned by every public operation:
// success plus data, or failure plus a human-readable error and optional
// structured details (missing fields, rule violations).
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// OK sends a success envelope.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload})
}

// OKWithWarnings sends a success envelope carrying advisory warnings.
func OKWithWarnings(c *gin.Context, payload interface{}, warnings []string) {
	env := Envelope{Success: true, Data: payload}
	if len(warnings) > 0 {
		env.Meta = &Meta{Warnings: warnings}
	}
	c.JSON(http.StatusOK, env)
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: payload})
}

// Error sends a failure envelope with the given status code.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Envelope{Success: false, Error: message, Details: details})
}

// HandleError maps domain errors to failure envelopes.
// Typed *apperr.Error values carry their own status code and details;
// anything else is treated as a downstream failure.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		c.JSON(domainErr.HTTPStatus(), Envelope{
			Success: false,
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	c.JSON(http.StatusBadGateway, Envelope{Success: false, Error: err.Error()})
	return true
}
