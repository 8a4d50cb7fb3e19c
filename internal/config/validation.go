package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the validator instance for layers.toml. Field names in errors
// use the TOML keys.
var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("duration", validateDuration)
}

// validateDuration accepts strings time.ParseDuration understands.
func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// Validate checks field values of a Config.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return nil
}

// ValidateWithRoot validates cfg and checks that every workspace pattern
// matches at least one directory under rootDir.
func ValidateWithRoot(cfg *Config, rootDir string) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	for _, pattern := range cfg.Workspaces {
		dirs, err := expandPattern(rootDir, pattern)
		if err != nil {
			return err
		}
		if len(dirs) == 0 {
			return fmt.Errorf("workspace pattern %q matches no directory under %s", pattern, rootDir)
		}
	}

	return nil
}

// formatValidationError turns validator errors into one line per field,
// e.g. "vault.auth_method: must be one of [token approle]".
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(fe), describe(fe)))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the struct name from the namespace ("Config.vault.url").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a URL"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "duration":
		return "must be a duration such as 10s"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
