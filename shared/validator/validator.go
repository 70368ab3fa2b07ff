package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"lodge/shared/constant"
	"lodge/shared/failure"

	"github.com/gabriel-vasile/mimetype"
	val "github.com/go-playground/validator/v10"
)

const megabyte = 1 << 20

var (
	validate *val.Validate

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func contentType(field val.FieldLevel) string {
	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		return value.Header.Get(constant.RequestHeaderContentType)
	case *multipart.FileHeader:
		if value == nil {
			return constant.Empty
		}

		return value.Header.Get(constant.RequestHeaderContentType)
	case []byte:
		if len(value) == 0 {
			return constant.Empty
		}

		return mimetype.Detect(value).String()
	}

	return constant.Empty
}

func registerMimetypeValidation(field val.FieldLevel) bool {
	detected := contentType(field)
	if detected == constant.Empty {
		return false
	}

	allowedTypes := strings.Split(field.Param(), " ")

	return slices.ContainsFunc(allowedTypes, func(allowed string) bool {
		return mimetype.EqualsAny(detected, allowed)
	})
}

func registerFileSizeValidation(field val.FieldLevel) bool {
	var fileSize int64

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		fileSize = value.Size
	case *multipart.FileHeader:
		if value != nil {
			fileSize = value.Size
		}
	case []byte:
		fileSize = int64(len(value))
	case string:
		fileSize = int64(len(value))
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return fileSize <= int64(maxSizeMB*megabyte)
}

func registerSlugValidation(field val.FieldLevel) bool {
	return slugPattern.MatchString(field.Field().String())
}

func registerClockValidation(field val.FieldLevel) bool {
	_, err := time.Parse(constant.ClockFormat, field.Field().String())

	return err == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	validations := map[string]val.Func{
		"empty": func(fl val.FieldLevel) bool {
			return fl.Field().IsZero()
		},
		"mimetypes":   registerMimetypeValidation,
		"maxfilesize": registerFileSizeValidation,
		"slug":        registerSlugValidation,
		"clock":       registerClockValidation,
	}

	for tag, fn := range validations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate decodes a JSON body into data and validates it. Both failures are 400s.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	return asFailure(validate.Struct(data))
}

func ValidateVar(field any, tag string) error {
	return asFailure(validate.Var(field, tag))
}

func asFailure(err error) error {
	if err == nil {
		return nil
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}
