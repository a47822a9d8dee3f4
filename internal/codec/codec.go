// Package codec encodes and decodes entities to and from single delimited text lines.
//
// Fields are separated by Delimiter. There is no escaping: text fields must not
// contain Delimiter or a line break, and IDs must additionally avoid the list
// separators. Encode rejects such values with errs.ErrInvalidRecord.
package codec

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/marketstore/internal/errs"
)

const (
	// Delimiter separates the fields of one record.
	Delimiter = "%"
	// ListSeparator joins the items of a list-valued field.
	ListSeparator = ","
	// PartSeparator splits one embedded comment into its parts.
	PartSeparator = ":"
)

// Codec converts one entity kind to and from a record line (without newline).
// Decoded entities carry references as bare IDs; resolution is the repository's job.
type Codec[T any] interface {
	// Kind names the entity kind for logs and metrics.
	Kind() string
	// Encode renders v as one line.
	Encode(v T) (string, error)
	// Decode parses one line.
	Decode(line string) (T, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("recordsafe", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), Delimiter+"\r\n")
	})
	_ = v.RegisterValidation("refsafe", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), Delimiter+ListSeparator+PartSeparator+"\r\n")
	})
	return v
}

func check(kind string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrInvalidRecord, kind, err)
	}
	return nil
}

// decoded applies the Encode rules to a freshly decoded value, so a line that
// could not be written back is reported as malformed.
func decoded(kind string, v any) error {
	if err := validate.Struct(v); err != nil {
		return malformed(kind, "%v", err)
	}
	return nil
}

func malformed(kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", errs.ErrMalformedRecord, kind, fmt.Sprintf(format, args...))
}

func joinList(items []string) string { return strings.Join(items, ListSeparator) }

func splitList(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
