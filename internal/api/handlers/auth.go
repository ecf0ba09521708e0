package handlers

import (
	"errors"
	"net/http"

	"go-zettelkasten/internal/config"
	"go-zettelkasten/internal/database"
	"go-zettelkasten/internal/models"
	"go-zettelkasten/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register creates the account and provisions its root folder in the same
// request. Root creation is the explicit onboarding step; nothing else
// implicitly creates folders for a user. It is idempotent, so a crashed
// registration can simply be retried.
func Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: username, email and password are required"})
		return
	}

	user := models.User{Username: input.Username, Email: input.Email}
	if err := user.SetPassword(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken", "kind": "conflict"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	store, err := treeStore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize storage"})
		return
	}
	if _, err := store.EnsureRootFolder(user.ID); err != nil {
		respondError(c, err)
		return
	}

	cfg, _ := config.Load()
	token, err := utils.GenerateToken(user.ID, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  gin.H{"id": user.ID, "username": user.Username, "email": user.Email},
		"token": token,
	})
}

// Login verifies credentials and hands out a token.
func Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: username and password are required"})
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.CheckPassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	cfg, _ := config.Load()
	token, err := utils.GenerateToken(user.ID, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  gin.H{"id": user.ID, "username": user.Username, "email": user.Email},
		"token": token,
	})
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
