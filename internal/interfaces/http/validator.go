package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator instancia compartida. decimal.Decimal se valida como float64 para
// poder usar gt/gte en los DTOs.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validate = v
	})
	return validate
}

// validateStruct valida tags y devuelve un mensaje legible con el primer campo inválido.
func validateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s es requerido", e.Field())
	case "oneof":
		return fmt.Errorf("%s debe ser uno de: %s", e.Field(), e.Param())
	case "gt":
		return fmt.Errorf("%s debe ser mayor que %s", e.Field(), e.Param())
	case "gte":
		return fmt.Errorf("%s no puede ser menor que %s", e.Field(), e.Param())
	case "max":
		return fmt.Errorf("%s admite como máximo %s caracteres", e.Field(), e.Param())
	default:
		return fmt.Errorf("%s inválido", e.Field())
	}
}
