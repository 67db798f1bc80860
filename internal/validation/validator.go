package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator that understands decimal.Decimal fields, so tags such as
// `validate:"gt=0"` work on prices.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Messages flattens a validation error into field -> message. Errors that are not
// validator.ValidationErrors are returned under the "error" key.
func Messages(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
	}
	return out
}
