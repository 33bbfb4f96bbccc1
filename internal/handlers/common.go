package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/export"
	"github.com/attendance_system/pkg/utils"
)

// respondServiceError maps service errors onto HTTP statuses. Anything it
// does not recognise is logged and reported as a 500 with fallback as message.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var geo *services.GeofenceError
	var rate *services.RateLimitError

	switch {
	case errors.As(err, &geo):
		utils.RespondAPIError(c, http.StatusBadRequest, geo.Error(), gin.H{
			"distance_m": int(geo.DistanceM),
			"allowed_m":  geo.AllowedM,
		})
	case errors.As(err, &rate):
		utils.RespondTooManyRequests(c, rate.Error(), rate.RetryAfterSeconds())
	case errors.Is(err, services.ErrEmailDelivery):
		utils.RespondBadGateway(c, "Failed to send email", err.Error())

	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrCheckOutBeforeCheckIn),
		errors.Is(err, services.ErrUnknownRequestKind),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, services.ErrOTPNotFound),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrOTPInvalid):
		utils.RespondAPIError(c, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondUnauthorizedError(c, err.Error())
	case errors.Is(err, services.ErrAccountNotVerified),
		errors.Is(err, services.ErrAccountInactive):
		utils.RespondForbiddenError(c, err.Error())

	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrOfficeNotFound),
		errors.Is(err, services.ErrQRNotGenerated),
		errors.Is(err, services.ErrInvalidQRToken),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrShiftNotFound):
		utils.RespondAPIError(c, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, services.ErrAccountAlreadyVerified),
		errors.Is(err, services.ErrMustCheckInFirst),
		errors.Is(err, services.ErrRequestAlreadyDecided),
		errors.Is(err, services.ErrShiftExists):
		utils.RespondConflictError(c, err.Error())

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.RespondInternalServerError(c, fallback, err.Error())
	}
}

// uintParam reads a positive integer path parameter, answering 400 when it is not one.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		utils.RespondValidationError(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(v), true
}
