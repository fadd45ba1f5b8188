package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownEnumValue    = errors.New("unknown enum value")
	ErrInvalidTemplate     = errors.New("invalid template")
	ErrDuplicateTemplateID = errors.New("duplicate template id")
	ErrMissingToToken      = errors.New("executable template has no toToken")
	ErrNoFailureModes      = errors.New("executable template discloses no failure modes")
	ErrDanglingReplacement = errors.New("replacement template does not exist")
	ErrSelfReplacement     = errors.New("template names itself as replacement")
)

// ValidationErrors collects every problem found in a dataset so publishers can fix them in one pass.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(v), strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() []error {
	return v
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the template-specific tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("evmaddress", func(fl validator.FieldLevel) bool {
			return common.IsHexAddress(fl.Field().String())
		})
		_ = validate.RegisterValidation("failurecode", func(fl validator.FieldLevel) bool {
			return FailureCode(fl.Field().String()).Valid()
		})
	})
	return validate
}

// ValidateTemplate checks a single record in isolation.
func ValidateTemplate(t ActionTemplate) error {
	var errs ValidationErrors

	if err := Validator().Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("template %q: %w: field %s failed %q", t.ID, ErrInvalidTemplate, fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, fmt.Errorf("template %q: %w: %v", t.ID, ErrInvalidTemplate, err))
		}
	}

	if t.Executable {
		if t.ToToken == "" {
			errs = append(errs, fmt.Errorf("template %q: %w", t.ID, ErrMissingToToken))
		}
		if len(t.CanFail) == 0 {
			errs = append(errs, fmt.Errorf("template %q: %w", t.ID, ErrNoFailureModes))
		}
	}

	if t.ReplacementID != "" && t.ReplacementID == t.ID {
		errs = append(errs, fmt.Errorf("template %q: %w", t.ID, ErrSelfReplacement))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateTemplateSet checks every record plus the cross-record invariants: unique ids and
// resolvable replacements on deprecated templates.
func ValidateTemplateSet(templates []ActionTemplate) error {
	var errs ValidationErrors
	seen := make(map[string]struct{}, len(templates))

	for _, t := range templates {
		if err := ValidateTemplate(t); err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				errs = append(errs, verrs...)
			} else {
				errs = append(errs, err)
			}
		}
		if t.ID == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			errs = append(errs, fmt.Errorf("template %q: %w", t.ID, ErrDuplicateTemplateID))
			continue
		}
		seen[t.ID] = struct{}{}
	}

	for _, t := range templates {
		if t.Status != TemplateStatusDeprecated || t.ReplacementID == "" {
			continue
		}
		if _, ok := seen[t.ReplacementID]; !ok {
			errs = append(errs, fmt.Errorf("template %q: %w: %q", t.ID, ErrDanglingReplacement, t.ReplacementID))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
