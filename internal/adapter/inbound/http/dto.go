package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/user"
)

// --- Request types ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int32   `json:"stock" validate:"gte=0"`
	CategoryID  int64   `json:"category_id" validate:"required"`
}

// --- Response types ---

type createdResponse struct {
	ID int64 `json:"id"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// userResponse deliberately carries no password hash field. The stored
// hash is never part of any outward representation.
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
	Greet    string `json:"greet"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Active:   u.Active,
		Greet:    u.Greet(),
	}
}

type speakResponse struct {
	Speak string `json:"speak"`
	Shout string `json:"shout"`
}

type categoryResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func toCategoryResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Active: c.Active}
}

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int32   `json:"stock"`
	CategoryID  int64   `json:"category_id"`
	Active      bool    `json:"active"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Active:      p.Active,
	}
}

// formatValidationErrors converts validator.ValidationErrors to a
// caller-friendly message.
func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return strings.Join(messages, "; ")
	}
	return "invalid request body"
}

func formatSingleValidationError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
