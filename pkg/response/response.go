package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the body shape for every non-redirect error the API returns.
// Clients only ever see a detail string, never stack traces or internals.
type Response struct {
	Detail string `json:"detail"`
}

var (
	EmptyRequestBodyResponse = Response{
		Detail: "Request body is empty. Please provide necessary data.",
	}

	BadRequestResponse = Response{
		Detail: "Invalid request body.",
	}

	URLNotFoundResponse = Response{
		Detail: "URL not found",
	}

	InvalidRecordResponse = Response{
		Detail: "URL type invalid - not string",
	}

	ServerErrorResponse = Response{
		Detail: "An internal server error occurred. Please try again later.",
	}

	MissingAuthHeaderResponse = Response{
		Detail: "Missing/invalid Auth header",
	}

	InvalidTokenResponse = Response{
		Detail: "Invalid token",
	}
)

// ValidationErrorResponse builds a detail string from validator errors so the
// caller can see which fields failed without exposing internals.
func ValidationErrorResponse(err error) Response {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return BadRequestResponse
	}

	details := make([]string, 0, len(validationErrs))
	for _, err := range validationErrs {
		switch err.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", err.Field()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", err.Field()))
		}
	}

	return Response{Detail: strings.Join(details, "; ")}
}
