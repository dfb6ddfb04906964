package config

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

// Report formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	sshGitPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+:[a-zA-Z0-9._/~-]+$`)
	reportFormats = map[string]struct{}{FormatMarkdown: {}, FormatJSON: {}, FormatCSV: {}}
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("environment", func(fl validator.FieldLevel) bool {
			_, ok := graph.LookupCloud(fl.Field().String())
			return ok
		})

		_ = v.RegisterValidation("family", func(fl validator.FieldLevel) bool {
			_, err := family.Get(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("report_format", func(fl validator.FieldLevel) bool {
			_, ok := reportFormats[strings.ToLower(fl.Field().String())]
			return ok
		})

		_ = v.RegisterValidation("duration_min", func(fl validator.FieldLevel) bool {
			floor, err := time.ParseDuration(fl.Param())
			if err != nil {
				return false
			}
			return time.Duration(fl.Field().Int()) >= floor
		})

		_ = v.RegisterValidation("git_url", func(fl validator.FieldLevel) bool {
			urlStr := strings.TrimSpace(fl.Field().String())
			if urlStr == "" {
				return false
			}
			if parsed, err := url.Parse(urlStr); err == nil && parsed.Host != "" {
				switch strings.ToLower(parsed.Scheme) {
				case "http", "https", "ssh", "git":
					return true
				}
			}
			if sshGitPattern.MatchString(urlStr) {
				return true
			}
			return isValidFilePath(urlStr)
		})

		validateInst = v
	})

	return validateInst
}

// isValidFilePath accepts absolute paths and explicit ./ or ../ relative paths.
func isValidFilePath(path string) bool {
	if strings.Contains(path, "\x00") {
		return false
	}
	if strings.HasPrefix(path, "/") {
		return !strings.Contains(path, "/../") && !strings.HasSuffix(path, "/..")
	}
	if strings.HasPrefix(path, "file://") {
		return true
	}
	return strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../")
}

// Validate performs structural and cross-field validation of settings.
func Validate(s *Settings) error {
	if s == nil {
		return hydraterrors.NewValidationError("settings", "settings are nil", nil)
	}

	if err := validatorInstance().Struct(s); err != nil {
		return convertValidationError(err)
	}

	if s.UseShim() {
		return nil
	}

	if s.Tenant.ID == "" {
		return hydraterrors.NewValidationError("tenant.id", "tenant.id is required (or set graph.shim)", nil)
	}
	switch s.Auth.Mode {
	case AuthClientSecret:
		if s.Auth.ClientID == "" {
			return hydraterrors.NewValidationError("auth.clientId", "auth.clientId is required for clientSecret auth", nil)
		}
		if s.Auth.ClientSecret == "" {
			return hydraterrors.NewValidationError("auth.clientSecret", "auth.clientSecret is required for clientSecret auth", nil)
		}
	case AuthToken:
		if s.Auth.Token == "" {
			return hydraterrors.NewValidationError("auth.token", "auth.token is required for token auth", nil)
		}
	}
	return nil
}

// convertValidationError normalizes validator errors into hydrate validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		if ve.Param() != "" {
			msg = fmt.Sprintf("%s failed validation for tag '%s=%s'", field, ve.Tag(), ve.Param())
		}
		return hydraterrors.NewValidationError(field, msg, err)
	}

	return hydraterrors.NewValidationError("settings", err.Error(), err)
}

// yamlishFieldName drops the root type from the namespace, leaving the YAML path.
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
