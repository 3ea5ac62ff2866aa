package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campuscarry/campuscarry-api/middleware"
	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	services.CodeInvalidInput:       http.StatusBadRequest,
	services.CodeUnauthorized:       http.StatusUnauthorized,
	services.CodeForbidden:          http.StatusForbidden,
	services.CodeNotFound:           http.StatusNotFound,
	services.CodeConflict:           http.StatusConflict,
	services.CodePreconditionFailed: http.StatusUnprocessableEntity,
	services.CodeUnexpected:         http.StatusInternalServerError,
}

// HTTPStatus maps an error code to its response status
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatus(code), gin.H{"error": message, "code": code})
}

// respondError renders a service error. Unclassified errors never leak their text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var svcErr *services.Error
	code := services.ErrorCode(err)
	message := "Internal server error"
	if code != services.CodeUnexpected && errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	abortWithError(c, code, message)
}

// respondBindingError renders a request body that failed to decode or validate
func respondBindingError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	abortWithError(c, services.CodeInvalidInput, "Invalid request data: "+err.Error())
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, strconv.IntSize)
	if err != nil || id == 0 {
		abortWithError(c, services.CodeInvalidInput, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// currentUser resolves the token subject to a profile. A valid token without a
// profile is treated as unauthenticated.
func currentUser(c *gin.Context, users *services.UserService) (*models.User, bool) {
	subject, err := middleware.GetUserID(c)
	if err != nil {
		abortWithError(c, services.CodeUnauthorized, "Could not extract user information")
		return nil, false
	}

	user, err := users.GetBySubject(c.Request.Context(), subject)
	if err != nil {
		if services.ErrorCode(err) == services.CodeNotFound {
			abortWithError(c, services.CodeUnauthorized, "User profile not found. Please create a profile first.")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return user, true
}
