package web

import (
	"callnotes/internal/domain"

	"github.com/gin-gonic/gin"
)

type ErrorCode string

const (
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

type StateResponse struct {
	State      domain.State `json:"state"`
	Transcript string       `json:"transcript"`
	Summary    string       `json:"summary"`
	Error      string       `json:"error,omitempty"`
}

type SummarizeRequest struct {
	Transcript string `json:"transcript"`
}

func respondError(c *gin.Context, status int, code ErrorCode, message string) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.AbortWithStatusJSON(status, resp)
}

func stateResponse(s domain.Snapshot) StateResponse {
	return StateResponse{
		State:      s.State,
		Transcript: s.Transcript,
		Summary:    s.Summary,
		Error:      s.ErrorMessage,
	}
}
