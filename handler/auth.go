package handler

import (
	"net/http"

	"github.com/Suryansh0910/ImageProcessor/middleware"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup 注册
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "All fields are required", err)
		return
	}

	token, user, err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			utils.Logger.Error("failed to create account", zap.Error(err))
		}
		failWith(c, err, "Error creating account")
		return
	}

	utils.Logger.Info("account created", zap.String("user_id", user.ID.Hex()))
	c.JSON(http.StatusCreated, model.AuthResponse{
		Success: true,
		Message: "Account created",
		Token:   token,
		User:    user.Public(),
	})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password required", err)
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			utils.Logger.Error("failed to log in", zap.Error(err))
		}
		failWith(c, err, "Error logging in")
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Verify 需要 middleware.Auth 先解析 token
func (h *AuthHandler) Verify(c *gin.Context) {
	user, err := h.auth.User(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			fail(c, http.StatusNotFound, "User not found", nil)
			return
		}
		utils.Logger.Error("failed to load user", zap.Error(err))
		fail(c, http.StatusUnauthorized, "Invalid token", nil)
		return
	}

	c.JSON(http.StatusOK, model.VerifyResponse{
		Success: true,
		User:    user.Public(),
	})
}
