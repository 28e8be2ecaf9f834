package validate

import (
	"errors"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		// денежные суммы проверяются обычными тегами gt/gte как числа
		instance.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return instance
}

// Struct проверяет структуру по тегам validate
func Struct(s interface{}) error {
	return get().Struct(s)
}

// FirstField возвращает имя первого поля, не прошедшего проверку
func FirstField(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].StructField()
	}
	return ""
}
