package tasks

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func checkInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("%w: field %s failed %s validation", ErrBadRequest, e.Field(), e.Tag())
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
