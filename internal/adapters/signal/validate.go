package signal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// joinProblem turns a validation failure into the notice shown to the user.
func joinProblem(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid join request"
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return "Please enter both username and room name"
	}
	label := "Username"
	if fe.Field() == "room" {
		label = "Room name"
	}
	return fmt.Sprintf("%s must be between %d and %d characters", label, domain.MinNameLen, domain.MaxNameLen)
}
