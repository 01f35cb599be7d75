package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/middleware"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// formatValidationErrors converts validator errors into a user-friendly format.
func formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field '%s' must be greater than or equal to %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Namespace(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

func respondValidation(w http.ResponseWriter, err error) {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", formatValidationErrors(validationErrs))
		return
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
}

func getAdminID(r *http.Request) (string, error) {
	adminID, ok := middleware.UserIDFromContext(r)
	if !ok {
		return "", &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Missing adminID in context"}
	}
	return adminID, nil
}
