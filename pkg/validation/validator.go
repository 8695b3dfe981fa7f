package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
)

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the directory enumerations as tags.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
			return entity.IsSpecialty(fl.Field().String())
		})
		_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
			return entity.IsCity(fl.Field().String())
		})
		v.RegisterAlias("gender", "oneof=male female")
		v.RegisterAlias("rating", "gte=0,lte=5")
	})
}

// Struct validates s with the same engine and tags Gin binding uses.
func Struct(s any) error {
	Init()
	return binding.Validator.ValidateStruct(s)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Form values that do not parse as numbers
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return map[string]string{"payload": "numeric fields must be numbers"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// BindForm maps form into obj (tag "form") one key at a time, so a value that
// fails to parse leaves every other field mapped. Parse failures are returned
// keyed by form name.
func BindForm(obj any, form url.Values) map[string]string {
	var failed map[string]string
	for key, vals := range form {
		if err := binding.MapFormWithTag(obj, url.Values{key: vals}, "form"); err != nil {
			if failed == nil {
				failed = make(map[string]string)
			}
			failed[key] = parseErrorMessage(err)
		}
	}
	return failed
}

func parseErrorMessage(err error) string {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return "must be a number"
	}
	return "is invalid"
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "uri":
		return "must be a valid URI"
	case "specialty":
		return "must be one of: " + strings.Join(entity.Specialties, ", ")
	case "city":
		return "must be one of: " + strings.Join(entity.Cities, ", ")
	case "gender":
		return "must be male or female"
	case "rating":
		return "must be between 0 and 5"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "uuid", "uuid4":
		return "must be a valid UUID"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
