// Package apierror writes the JSON error body shared by every endpoint.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationPrefix starts the message of every validation failure.
const ValidationPrefix = "Validation failed"

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Body is the error response document.
type Body struct {
	StatusCode int          `json:"statusCode"`
	Error      string       `json:"error"`
	Message    string       `json:"message"`
	Timestamp  time.Time    `json:"timestamp"`
	Path       string       `json:"path"`
	Method     string       `json:"method"`
	Details    []FieldError `json:"details,omitempty"`
}

func newBody(c *gin.Context, status int, message string) Body {
	return Body{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
	}
}

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, newBody(c, status, message))
}

// Validation turns a binding error into a 400 response with per-field details.
func Validation(c *gin.Context, err error) {
	body := newBody(c, http.StatusBadRequest, ValidationPrefix)

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			d := FieldError{Field: fe.Field(), Message: describe(fe)}
			body.Details = append(body.Details, d)
			msgs = append(msgs, d.Message)
		}
		body.Message = ValidationPrefix + ": " + strings.Join(msgs, "; ")
	case errors.As(err, &typeErr):
		body.Details = []FieldError{{Field: typeErr.Field, Message: typeErr.Field + " has an invalid type"}}
		body.Message = ValidationPrefix + ": " + body.Details[0].Message
	case errors.As(err, &syntaxErr):
		body.Message = ValidationPrefix + ": malformed JSON body"
	default:
		body.Message = ValidationPrefix + ": " + err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be an email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "e164":
		return fe.Field() + " must be a phone number in E.164 format"
	case "vin":
		return fe.Field() + " must be a valid 17 character VIN"
	case "gte", "lte", "gt", "lt":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// NoRoute answers unknown routes.
func NoRoute(c *gin.Context) {
	Abort(c, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path))
}

// Recovery converts panics into a 500 error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		Abort(c, http.StatusInternalServerError, "Internal server error")
	})
}
