package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// publicUser is the account shape exposed by auth endpoints; the credential
// hash never leaves the server.
func publicUser(u models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"role":         u.Role,
		"greenScore":   u.GreenScore,
		"profileImage": u.ProfileImage,
	}
}

func (h *Handlers) register(c *gin.Context) {
	h.registerWithRole(c, models.RoleUser)
}

func (h *Handlers) registerAdmin(c *gin.Context) {
	h.registerWithRole(c, models.RoleAdmin)
}

func (h *Handlers) registerWithRole(c *gin.Context, role models.Role) {
	var req registerReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide name, email and password")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	db := store.GetDB()
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fail(c, http.StatusBadRequest, "User already exists with this email")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, h.cfg.TokenTTL, user.ID, user.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful",
		"token":   token,
		"user":    publicUser(user),
	})
}

func (h *Handlers) login(c *gin.Context) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	var user models.User
	err := store.GetDB().Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, h.cfg.TokenTTL, user.ID, user.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    publicUser(user),
	})
}

func (h *Handlers) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": auth.CurrentUser(c)})
}

func (h *Handlers) updateProfile(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		ProfileImage string `json:"profileImage"`
	}
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user := auth.CurrentUser(c)
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.ProfileImage != "" {
		updates["profile_image"] = req.ProfileImage
	}
	db := store.GetDB()
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	var updated models.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "user": updated})
}
