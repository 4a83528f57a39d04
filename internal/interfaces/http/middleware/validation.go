package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jass/bff/internal/interfaces/http/dto"
)

var (
	dniPattern            = regexp.MustCompile(`^\d{8}$`)
	documentNumberPattern = regexp.MustCompile(`^[0-9A-Za-z]{8,12}$`)
	phonePattern          = regexp.MustCompile(`^(\+?51)?9\d{8}$`)
	phoneSeparators       = strings.NewReplacer(" ", "", "-", "")
)

// SetupValidator configures gin's validator: JSON field names in errors and
// the Peruvian document and phone tags
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	validators := map[string]validator.Func{
		"dni":             matchString(dniPattern, nil),
		"document_number": matchString(documentNumberPattern, nil),
		"pe_phone":        matchString(phonePattern, phoneSeparators),
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func matchString(re *regexp.Regexp, clean *strings.Replacer) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if clean != nil {
			s = clean.Replace(s)
		}
		return re.MatchString(s)
	}
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Los datos enviados no son válidos", requestID, details)
}

// HandleValidationError answers a failed bind. Malformed JSON is reported
// without field details.
func HandleValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "El cuerpo de la solicitud no es un JSON válido", GetRequestID(c)))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns the Spanish message of a failed rule
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "email":
		return "Correo electrónico inválido"
	case "min":
		if e.Kind() == reflect.String {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		return "Debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "len":
		return "Debe tener exactamente " + e.Param() + " caracteres"
	case "oneof":
		return "Debe ser uno de: " + e.Param()
	case "gt", "gte":
		return "Debe ser mayor que " + e.Param()
	case "numeric":
		return "Debe ser numérico"
	case "dni":
		return "El DNI debe tener 8 dígitos"
	case "document_number":
		return "Número de documento inválido"
	case "pe_phone":
		return "Número de celular inválido"
	default:
		return "Valor inválido"
	}
}
