package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"unihub-auth/internal/model"
	"unihub-auth/internal/token"
	"unihub-auth/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrEmailTaken):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Email already used"
		body.Details = "email"
	case errors.Is(err, model.ErrUsernameTaken):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Username unavailable"
		body.Details = "username"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid email or password"
	case errors.Is(err, model.ErrMissingToken):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Missing bearer token"
	case errors.Is(err, model.ErrInvalidRefreshToken):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid refresh token"
	case errors.Is(err, model.ErrWrongTokenType):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid token type"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "User not found"
	case errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, token.ErrMalformedToken),
		errors.Is(err, token.ErrInvalidSignature),
		errors.Is(err, token.ErrInvalidPayload),
		errors.Is(err, token.ErrTokenExpired):
		// Token-layer failures stay distinguishable in logs only.
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid or expired token"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
