package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/shared/errors"
)

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(c *gin.Context, paramName, entityName string) (uint, error) {
	idStr := c.Param(paramName)
	if idStr == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("Invalid " + entityName + " ID format")
	}

	if id == 0 {
		return 0, errors.NewValidationError(entityName + " ID cannot be zero")
	}

	return uint(id), nil
}
