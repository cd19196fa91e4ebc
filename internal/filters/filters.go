// Package filters turns a bus.gov.ru search page link into the index search filter.
package filters

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/registry"
)

const (
	// Sentinel the registry's web UI puts in place of an unset filter
	Sentinel = "empty"

	// Separator between list values inside one query parameter
	Separator = ", "

	// NotSpecified is printed for optional filters left unset
	NotSpecified = "Не указано"

	// InvalidURLMessage is shown when a pasted link lacks a region or an institution kind
	InvalidURLMessage = "Некорректная ссылка. Убедитесь, что выбран регион и вид учреждения в фильтре."
)

// Filter is the search filter taken from a bus.gov.ru page link
type Filter struct {
	Regions []string `validate:"required,first_set"`
	Areas   []string `validate:"omitempty,dive,required"`
	City    string
	VGUName []string `validate:"required,first_set"`
	VGUIDs  []string `validate:"omitempty,dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("first_set", isFirstSet)
	return v
}

// isFirstSet checks only the leading value of a list filter
func isFirstSet(fl validator.FieldLevel) bool {
	values, ok := fl.Field().Interface().([]string)
	return ok && len(values) > 0 && values[0] != "" && values[0] != Sentinel
}

// ParseURL extracts the filter from a registry page link. Each parameter holds
// a ", " separated list and only its first occurrence is read. "empty" areas or
// city count as unset; regions and vguName are mandatory.
func ParseURL(raw string) (Filter, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Filter{}, apperrors.NewValidationError(InvalidURLMessage).
			WithContext("cause", err.Error())
	}
	params := u.Query()
	if u.RawQuery == "" && u.Scheme == "" && strings.Contains(u.Path, "=") {
		// a bare query string pasted without the page address
		if params, err = url.ParseQuery(u.Path); err != nil {
			return Filter{}, apperrors.NewValidationError(InvalidURLMessage).
				WithContext("cause", err.Error())
		}
	}

	f := Filter{
		Regions: splitList(params.Get("regions")),
		Areas:   splitList(params.Get("areas")),
		City:    params.Get("city"),
		VGUName: splitList(params.Get("vguName")),
		VGUIDs:  splitList(params.Get("vguIds")),
	}

	if len(f.Areas) > 0 && f.Areas[0] == Sentinel {
		f.Areas = nil
	}
	if f.City == Sentinel {
		f.City = ""
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Validate checks that regions and vguName carry real values
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		appErr := apperrors.NewValidationError(InvalidURLMessage)
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			appErr.WithContext("field", verrs[0].Namespace())
		}
		return appErr
	}
	return nil
}

// Registry converts the filter into the index search parameters. Areas are
// sent as one comma separated value.
func (f Filter) Registry() registry.Filter {
	return registry.Filter{
		Regions: f.Regions,
		VGUName: f.VGUName,
		VGUIDs:  f.VGUIDs,
		Areas:   strings.Join(f.Areas, Separator),
		City:    f.City,
	}
}

// Summary renders the block echoed back to the operator before confirmation
func (f Filter) Summary() string {
	rule := "#########################################################"
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "#                   Полученные данные                   #")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Регионы: %s\n", joinOrDefault(f.Regions))
	fmt.Fprintf(&b, "Области: %s\n", joinOrDefault(f.Areas))
	fmt.Fprintf(&b, "Город: %s\n", orDefault(f.City))
	fmt.Fprintf(&b, "Названия ВГУ: %s\n", joinOrDefault(f.VGUName))
	fmt.Fprintf(&b, "Идентификаторы ВГУ: %s\n", joinOrDefault(f.VGUIDs))
	fmt.Fprintln(&b, rule)
	return b.String()
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, Separator)
}

func joinOrDefault(values []string) string {
	return orDefault(strings.Join(values, Separator))
}

func orDefault(v string) string {
	if v == "" {
		return NotSpecified
	}
	return v
}
