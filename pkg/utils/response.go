package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse 定义了标准的成功响应结构
type SuccessResponse struct {
	Status  string      `json:"status"`            // always "success"
	Message string      `json:"message,omitempty"` // optional human readable message
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON 是一个通用的辅助函数，用于发送 JSON 响应
func RespondJSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// RespondSuccess sends the standard success envelope.
func RespondSuccess(c *gin.Context, status int, data interface{}, message string) {
	response := SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	if message == "" && data == nil {
		response.Message = "Operation successful"
	}
	RespondJSON(c, status, response)
}

// APIErrorResponse is the error body of every failed request: { "error": "...", "details": ... }.
// details may be a string, a map or nil.
type APIErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondAPIError aborts the request with an APIErrorResponse.
func RespondAPIError(c *gin.Context, status int, errorMessage string, details interface{}) {
	response := APIErrorResponse{
		Error: errorMessage,
	}
	if details != nil {
		response.Details = details
	}
	c.AbortWithStatusJSON(status, response)
}

// RespondValidationError 发送用于处理参数校验错误的特定响应
// details 通常是 err.Error() 或更结构化的错误信息
func RespondValidationError(c *gin.Context, details interface{}) {
	RespondAPIError(c, http.StatusBadRequest, "Invalid request parameters", details)
}

// RespondBindingError translates binding errors into field messages when possible.
func RespondBindingError(c *gin.Context, err error) {
	RespondValidationError(c, ValidationDetails(err))
}

// RespondUnauthorizedError 发送未授权错误
func RespondUnauthorizedError(c *gin.Context, message ...string) {
	errMsg := "Not authenticated or token invalid/expired"
	if len(message) > 0 && message[0] != "" {
		errMsg = message[0]
	}
	RespondAPIError(c, http.StatusUnauthorized, errMsg, nil)
}

func RespondForbiddenError(c *gin.Context, message string) {
	RespondAPIError(c, http.StatusForbidden, message, nil)
}

// RespondNotFoundError 发送资源未找到错误
func RespondNotFoundError(c *gin.Context, resourceName string) {
	RespondAPIError(c, http.StatusNotFound, resourceName+" not found", nil)
}

// RespondInternalServerError 发送服务器内部错误
// errDetails 可以是 err.Error()
func RespondInternalServerError(c *gin.Context, message string, errDetails ...string) {
	var details interface{}
	if len(errDetails) > 0 {
		details = errDetails[0]
	}
	RespondAPIError(c, http.StatusInternalServerError, message, details)
}

// RespondConflictError 发送冲突错误 (例如，资源已存在)
func RespondConflictError(c *gin.Context, message string, details ...string) {
	var detailContent interface{}
	if len(details) > 0 {
		detailContent = details[0]
	}
	RespondAPIError(c, http.StatusConflict, message, detailContent)
}

// RespondTooManyRequests sets Retry-After when retryAfterSeconds is positive.
func RespondTooManyRequests(c *gin.Context, message string, retryAfterSeconds int) {
	var details interface{}
	if retryAfterSeconds > 0 {
		c.Header("Retry-After", itoa(retryAfterSeconds))
		details = gin.H{"retry_after_seconds": retryAfterSeconds}
	}
	RespondAPIError(c, http.StatusTooManyRequests, message, details)
}

// RespondBadGateway reports a failure of an upstream dependency such as the mail relay.
func RespondBadGateway(c *gin.Context, message string, detail string) {
	RespondAPIError(c, http.StatusBadGateway, message, detail)
}
