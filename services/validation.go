package services

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     = newValidator()
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("tablenumber", func(fl validator.FieldLevel) bool {
		_, err := parseTableNumber(fl.Field().String())
		return err == nil
	})

	return v
}

// validateStruct runs the struct tags and converts failures to a ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"request": err.Error()}}
	}

	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		name := fe.Field()
		// tables[1] -> tables
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		if _, seen := ve.Fields[name]; !seen {
			ve.Fields[name] = describe(fe)
		}
	}
	return ve
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone10":
		return "must be exactly 10 digits"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	case "tablenumber":
		return "must contain positive table numbers"
	case "datetime":
		return "must match layout " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}

func parseTableNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("table number must be positive")
	}
	return n, nil
}

// canonicalTables parses table number strings, rejects duplicates after
// normalisation ("05" and "5" are the same table) and returns both the
// canonical strings in request order and the numbers sorted ascending.
func canonicalTables(tables []string) ([]string, []int, error) {
	seen := make(map[int]struct{}, len(tables))
	canon := make([]string, 0, len(tables))
	numbers := make([]int, 0, len(tables))

	for _, t := range tables {
		n, err := parseTableNumber(t)
		if err != nil {
			return nil, nil, newValidationError("tables", "must contain positive table numbers")
		}
		if _, dup := seen[n]; dup {
			return nil, nil, newValidationError("tables", "must not contain duplicates")
		}
		seen[n] = struct{}{}
		canon = append(canon, strconv.Itoa(n))
		numbers = append(numbers, n)
	}

	sort.Ints(numbers)
	return canon, numbers, nil
}

func tableStrings(numbers []int) []string {
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = strconv.Itoa(n)
	}
	return out
}
