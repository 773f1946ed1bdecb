package dto

import (
	"net/http"

	res "github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

// SuccessResponse writes data as a 200 JSON body.
func SuccessResponse(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// MessageResponse writes {success:true, code:100, message}.
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, res.SuccessResponse(message))
}

// ErrorResponse writes {success:false, code, error, message} with the
// error's HTTP status, 200 when it has none.
func ErrorResponse(c *gin.Context, err *res.BusinessError) {
	status := err.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, res.ErrorResponse(err.Code, err.Msg))
}

// AbortWithError is ErrorResponse for middleware.
func AbortWithError(c *gin.Context, err *res.BusinessError) {
	ErrorResponse(c, err)
	c.Abort()
}
