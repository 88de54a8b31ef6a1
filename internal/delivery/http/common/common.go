package http_common

import (
	"errors"
	"net/http"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

func BadRequest(ctx *gin.Context, msg string, err error) {
	resp := ErrorResponse{Error: msg, Code: http.StatusBadRequest}
	if err != nil {
		resp.Message = err.Error()
	}
	ctx.JSON(http.StatusBadRequest, resp)
}

// Fail answers 404 for missing records and 500 for everything else.
func Fail(ctx *gin.Context, msg string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, model.ErrNotFound) {
		code = http.StatusNotFound
	}
	ctx.JSON(code, ErrorResponse{
		Error:   msg,
		Message: err.Error(),
		Code:    code,
	})
}
