package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value,omitempty"`
}

func NewFieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Value: fmt.Sprint(fe.Value()),
		})
	}
	return out
}

// BadRequest reports a malformed body, listing the failed fields when err came from the validator.
func BadRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(
			http.StatusBadRequest,
			NewResponse(
				false,
				http.StatusBadRequest,
				map[string]any{
					"message": "invalid request",
					"fields":  NewFieldErrors(verrs),
				},
			))
		return
	}
	ErrorResponse(c, http.StatusBadRequest, err.Error())
}
