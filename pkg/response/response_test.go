package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorResponse(t *testing.T) {
	t.Run("non-validation error", func(t *testing.T) {
		resp := ValidationErrorResponse(errors.New("unknown error"))

		assert.Equal(t, BadRequestResponse, resp)
	})

	t.Run("required field", func(t *testing.T) {
		validate := validator.New()

		payload := struct {
			OriginalURL string `validate:"required"`
		}{}

		err := validate.Struct(payload)
		assert.Error(t, err)

		resp := ValidationErrorResponse(err)

		assert.Contains(t, resp.Detail, "OriginalURL is required")
	})
}
