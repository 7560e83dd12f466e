package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator. Field names in errors are
// the koanf keys, so messages match what users write in YAML.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, translateError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// translateError renders a field error using the dotted config path.
func translateError(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", path)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
