package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

const defaultUserStatus = "active"

type userRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password"`
	FullName string `json:"full_name" binding:"notblank"`
	Email    string `json:"email" binding:"notblank,email"`
	Role     string `json:"role" binding:"notblank"`
	Status   string `json:"status"`
}

func (r userRequest) user() model.User {
	status := strings.TrimSpace(r.Status)
	if status == "" {
		status = defaultUserStatus
	}
	return model.User{
		ID:       r.ID,
		Username: strings.TrimSpace(r.Username),
		FullName: strings.TrimSpace(r.FullName),
		Email:    strings.TrimSpace(r.Email),
		Role:     strings.TrimSpace(r.Role),
		Status:   status,
	}
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListUsers returns every account without password hashes.
// GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// CreateUser adds an account.
// POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing field: password"})
		return
	}

	u := req.user()
	hash, err := hashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	u.Password = hash

	if err := h.store.CreateUser(c.Request.Context(), &u); err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": u.ID})
}

// UpdateUser edits an account; the password changes only when given.
// PUT /api/users
func (h *Handler) UpdateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id"})
		return
	}

	ctx := c.Request.Context()
	u := req.user()
	if strings.TrimSpace(req.Status) == "" {
		current, err := h.store.GetUser(ctx, req.ID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			databaseError(c, err)
			return
		}
		u.Status = current.Status
	}
	if req.Password != "" {
		hash, err := hashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		u.Password = hash
	}

	err := h.store.UpdateUser(ctx, &u)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes an account.
// DELETE /api/users?id=
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c.Query("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id"})
		return
	}
	err := h.store.DeleteUser(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
