// Package requests contains HTTP request DTOs for the engage-api.
package requests

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9]?[0-9]{7,14}$`)

// RegisterValidators installs the engage-specific tags on gin's validator.
//
//	phone    E.164 number, optionally carrying the "whatsapp:" channel prefix
//	language one of languages (case-insensitive)
//	sector   one of sectors (case-insensitive)
func RegisterValidators(languages, sectors []string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return fmt.Errorf("register phone validator: %w", err)
	}
	if err := v.RegisterValidation("language", oneOfFold(languages)); err != nil {
		return fmt.Errorf("register language validator: %w", err)
	}
	if err := v.RegisterValidation("sector", oneOfFold(sectors)); err != nil {
		return fmt.Errorf("register sector validator: %w", err)
	}
	return nil
}

func validatePhone(fl validator.FieldLevel) bool {
	number := strings.TrimPrefix(strings.TrimSpace(fl.Field().String()), "whatsapp:")
	return e164Pattern.MatchString(number)
}

func oneOfFold(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		if len(set) == 0 {
			return true
		}
		_, ok := set[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
		return ok
	}
}

// ValidationMessage flattens binding errors into one readable line.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
