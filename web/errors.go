package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nomadguide/balance"
	"nomadguide/currency"
	dbt "nomadguide/db/db"
	"nomadguide/validate"
)

type errorResponse struct {
	Error  string                `json:"error"`
	Fields []validate.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) int {
	var verr *validate.ValidationError
	switch {
	case errors.Is(err, dbt.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, balance.ErrCurrencyMismatch),
		errors.Is(err, currency.ErrMissingRate),
		errors.Is(err, currency.ErrInvalidRate),
		errors.Is(err, dbt.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as the response. Internal errors are kept
// out of the body and only reach the request log.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		resp.Error = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
