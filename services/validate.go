package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/blog-backend/errs"
)

// slugPattern keeps slugs usable as both a URL segment and a file name stem.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidSlug reports whether slug may name a post and its mirror file.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})

	return v
}

// validateInput checks in against its validate tags and reports the first failure as a
// validation *errs.ApiErr.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewInternalErrorWithCause("input validation failed", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(fe.Field())
	case "email":
		return errs.NewInvalidFieldError(fe.Field(), "must be a valid email address")
	case "slug":
		return errs.NewInvalidFieldError(fe.Field(), "must start with a letter or digit and contain only letters, digits, '-' and '_'")
	case "oneof":
		return errs.NewInvalidFieldError(fe.Field(), "must be one of: "+fe.Param())
	case "min":
		return errs.NewInvalidFieldError(fe.Field(), "must not be empty")
	default:
		return errs.NewInvalidFieldError(fe.Field(), "failed "+fe.Tag()+" check")
	}
}

// normalizeTags trims every tag and drops the empty ones.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
