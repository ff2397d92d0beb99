package server

import (
	"github.com/gin-gonic/gin"
)

// AppError wraps a failure with the HTTP status it is reported with.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError wraps err with a status code and user-facing message.
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Response is the error envelope.
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// ProcessResponse is returned by a successful upload.
type ProcessResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	RowsProcessed int      `json:"rows_processed"`
	DownloadURL   string   `json:"download_url"`
	Warnings      []string `json:"warnings"`
}

// respondError writes appErr as an envelope and logs the wrapped error.
func respondError(c *gin.Context, appErr *AppError, data gin.H) {
	if appErr.Err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	c.AbortWithStatusJSON(appErr.Code, Response{
		StatusCode: appErr.Code,
		Msg:        appErr.Message,
		Data:       attachRequestID(c, data),
	})
}

func attachRequestID(c *gin.Context, data gin.H) gin.H {
	requestID := getRequestID(c)
	if requestID == "" {
		return data
	}
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["request_id"]; !ok {
		data["request_id"] = requestID
	}
	return data
}
