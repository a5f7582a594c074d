package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahammedsa/server-site-fitenss/internal/service"
)

// UserHandler exposes user reads and profile edits.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /user and GET /users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListRequested handles GET /requested-users.
func (h *UserHandler) ListRequested(c *gin.Context) {
	users, err := h.users.ListRequested(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Lookup handles GET /test?email=.
func (h *UserHandler) Lookup(c *gin.Context) {
	user, err := h.users.GetByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /changes/update/:email.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	payload, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.users.UpdateProfile(c.Request.Context(), c.Param("email"), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
