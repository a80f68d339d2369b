package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	} else if code != "" {
		msg = code
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError unwraps an *apierr.Error; anything else is a 500 with fallbackCode.
// Internal causes are not echoed to the client.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError {
			_ = c.Error(err)
			RespondError(c, ae.Status, ae.Code, nil)
			return
		}
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	_ = c.Error(err)
	RespondError(c, http.StatusInternalServerError, fallbackCode, nil)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
