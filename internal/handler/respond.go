package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/repairhub/workshop-service/internal/errs"
)

func errStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrCustomerNotFound),
		errors.Is(err, errs.ErrTechnicianNotFound),
		errors.Is(err, errs.ErrWorkOrderNotFound),
		errors.Is(err, errs.ErrImageNotFound),
		errors.Is(err, errs.ErrRemoteRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyConverted),
		errors.Is(err, errs.ErrDuplicateEmail),
		errors.Is(err, errs.ErrDuplicateSerial),
		errors.Is(err, errs.ErrCapacityExceeded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// abortErr writes the structured error response for err. Internal errors are
// masked to avoid leaking storage details.
func abortErr(c *gin.Context, err error) {
	status := errStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
