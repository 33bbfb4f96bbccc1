package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/attendance_system/internal/auth"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/utils"
)

// AuthHandler 封装了注册、OTP 验证和登录相关的 HTTP 处理逻辑
type AuthHandler struct {
	service   services.AuthService
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthHandler(service services.AuthService, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: service, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"omitempty,max=120"`
	Phone    string `json:"phone" binding:"omitempty,phone10"`
}

type RegisterResponse struct {
	Email   string `json:"email"`
	OTPSent bool   `json:"otp_sent"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      services.MeProfile `json:"user"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Register godoc
// @Summary Register an employee account
// @Description Creates or refreshes an unverified account and emails a 6 digit OTP.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Registration details"
// @Success 201 {object} utils.SuccessResponse{data=RegisterResponse}
// @Failure 400 {object} utils.APIErrorResponse
// @Failure 409 {object} utils.APIErrorResponse "Email already registered and verified"
// @Failure 429 {object} utils.APIErrorResponse "OTP cooldown or hourly limit"
// @Failure 502 {object} utils.APIErrorResponse "Account saved but the email could not be sent"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailDelivery) && user != nil {
			utils.RespondBadGateway(c, "Account created but the OTP email could not be sent. Use resend-otp to try again.", err.Error())
			return
		}
		respondServiceError(c, err, "Registration failed")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, RegisterResponse{Email: user.Email, OTPSent: true},
		"OTP sent to email. Verify to activate your account.")
}

// VerifyOTP godoc
// @Summary Verify the registration OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body VerifyOTPRequest true "Email and OTP"
// @Success 200 {object} utils.SuccessResponse{data=services.MeProfile}
// @Failure 400 {object} utils.APIErrorResponse "OTP invalid, expired or missing"
// @Failure 404 {object} utils.APIErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	user, err := h.service.VerifyRegistration(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondServiceError(c, err, "OTP verification failed")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, services.NewMeProfile(user), "Email verified. You can now log in.")
}

// ResendOTP godoc
// @Summary Resend the registration OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body EmailRequest true "Email"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.APIErrorResponse
// @Failure 409 {object} utils.APIErrorResponse "Already verified"
// @Failure 429 {object} utils.APIErrorResponse
// @Failure 502 {object} utils.APIErrorResponse
// @Router /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if err := h.service.ResendOTP(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, err, "Could not resend OTP")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "OTP resent")
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponse{data=LoginResponse}
// @Failure 401 {object} utils.APIErrorResponse "Invalid email or password"
// @Failure 403 {object} utils.APIErrorResponse "Email not verified or account inactive"
// @Failure 429 {object} utils.APIErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	user, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "Login failed")
		return
	}

	token, expiresAt, err := auth.GenerateToken(h.jwtSecret, h.jwtTTL, user)
	if err != nil {
		utils.RespondInternalServerError(c, "Could not generate token", err.Error())
		return
	}
	utils.RespondSuccess(c, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      services.NewMeProfile(user),
	}, "Login successful")
}

// Logout godoc
// @Summary Log out
// @Description Invalidates the current token until it would have expired.
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(auth.ContextJTI)
	expVal, ok := c.Get(auth.ContextExp)
	exp, okExp := expVal.(time.Time)
	if jti == "" || !ok || !okExp {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: JTI or EXP not found in context", nil)
		return
	}
	auth.AddToDenylist(jti, exp)
	utils.RespondSuccess(c, http.StatusOK, nil, "Logged out")
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=services.MeProfile}
// @Failure 401 {object} utils.APIErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	me, err := h.service.Me(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err, "Could not load profile")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, me, "")
}

// ForgotPassword godoc
// @Summary Request a password reset OTP
// @Description Always answers 200 so the endpoint cannot be used to probe for accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body EmailRequest true "Email"
// @Success 200 {object} utils.SuccessResponse
// @Failure 429 {object} utils.APIErrorResponse
// @Failure 502 {object} utils.APIErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, err, "Could not start password reset")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "If the account exists, a reset OTP has been sent.")
}

// ResetPassword godoc
// @Summary Reset the password with an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body ResetPasswordRequest true "Email, OTP and new password"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondServiceError(c, err, "Password reset failed")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "Password updated. You can now log in.")
}
