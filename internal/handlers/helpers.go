package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
)

// birthDateLayout is the wire format for dates without a time component.
const birthDateLayout = "2006-01-02"

// respondError maps a domain error to its HTTP status and a JSON message.
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.StatusFromError(err)).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// respondValidationErrors renders a 400 with a per-field error map.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// parseIDParam parses the named route parameter as an entity ID.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed ID '%s': %w", raw, apperrors.ErrValidation)
	}
	return uint(id), nil
}

// parseIDList parses a comma-separated ids query value, e.g. "1,2,3".
func parseIDList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("ids query parameter is required: %w", apperrors.ErrValidation)
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed ID '%s': %w", part, apperrors.ErrValidation)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// parseBirthDate parses a YYYY-MM-DD date.
func parseBirthDate(raw string) (time.Time, error) {
	t, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("birth date must be in YYYY-MM-DD format: %w", apperrors.ErrValidation)
	}
	return t, nil
}
