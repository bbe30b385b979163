package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/services"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes. The whole surface is admin-only,
// so the guards wrap the group.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, admin fiber.Handler) {
	userRoutes := router.Group("/users", auth, admin)
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/batch", h.HandleGetUsersBatch)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Put("/", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// UserCreateRequest represents the request body for creating a user.
type UserCreateRequest struct {
	Username  string `json:"username" validate:"required,min=5,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=255"`
	BirthDate string `json:"birth_date" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=USER MODERATOR ADMIN"`
}

// UserUpdateRequest represents the request body for updating a user. An
// empty password keeps the stored hash.
type UserUpdateRequest struct {
	ID        uint   `json:"id" validate:"required"`
	Username  string `json:"username" validate:"required,min=5,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"omitempty,min=8,max=255"`
	BirthDate string `json:"birth_date" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=USER MODERATOR ADMIN"`
}

// HandleCreateUser creates a new user with an explicit role.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user create body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.service.Create(services.UserCreateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birthDate,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		log.Printf("Error creating user: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUsers retrieves all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAll()
	if err != nil {
		log.Printf("Error getting all users: %v", err)
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGetUserByID retrieves a single user by their ID.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.service.GetByID(id)
	if err != nil {
		log.Printf("Error getting user by ID %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleGetUsersBatch retrieves the users whose IDs appear in the ids query
// parameter.
func (h *UserHandler) HandleGetUsersBatch(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return respondError(c, err)
	}
	users, err := h.service.GetAllByIDs(ids)
	if err != nil {
		log.Printf("Error getting users by IDs %v: %v", ids, err)
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleUpdateUser updates an existing user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.service.Update(req.ID, services.UserUpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birthDate,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		log.Printf("Error updating user %d: %v", req.ID, err)
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user by their ID.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		log.Printf("Error deleting user %d: %v", id, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
