// Package validate provides declarative field validation shared by every
// entity form, replacing per-entity ad hoc checks with one schema layer.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType enumerates the recognized value formats.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeEmail   FieldType = "email"
	TypeDecimal FieldType = "decimal" // non-negative decimal amount
	TypeUnix    FieldType = "unix"    // Unix timestamp in seconds
	TypeBool    FieldType = "bool"    // "true" or "false"
	TypeEnum    FieldType = "enum"    // one of Rule.Options
)

// Rule describes the constraints on a single field.
type Rule struct {
	Field    string
	Required bool
	Type     FieldType
	Options  []string // for TypeEnum
	MaxLen   int      // 0 means unlimited
}

// Schema is the full rule set for one entity shape.
type Schema []Rule

// Errors maps field names to human-readable problems.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Apply checks fields against the schema and returns nil or an Errors value
// describing every failing field. Unknown fields are ignored; forms often
// carry extra keys the entity does not care about.
func (s Schema) Apply(fields map[string]string) error {
	errs := Errors{}

	for _, rule := range s {
		value := fields[rule.Field]
		if value == "" {
			if rule.Required {
				errs[rule.Field] = "required"
			}
			continue
		}

		if rule.MaxLen > 0 && len(value) > rule.MaxLen {
			errs[rule.Field] = fmt.Sprintf("longer than %d characters", rule.MaxLen)
			continue
		}

		if msg := checkType(rule, value); msg != "" {
			errs[rule.Field] = msg
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkType(rule Rule, value string) string {
	switch rule.Type {
	case TypeString, "":
		return ""
	case TypeEmail:
		// Deliverability is the mail server's problem; the form check is
		// shape only: one @, something on both sides, a dot in the domain.
		at := strings.Index(value, "@")
		if at <= 0 || at != strings.LastIndex(value, "@") {
			return "not a valid email address"
		}
		domain := value[at+1:]
		if len(domain) < 3 || !strings.Contains(domain, ".") {
			return "not a valid email address"
		}
		return ""
	case TypeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return "not a valid amount"
		}
		if d.Sign() < 0 {
			return "must not be negative"
		}
		return ""
	case TypeUnix:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return "not a valid timestamp"
		}
		return ""
	case TypeBool:
		if value != "true" && value != "false" {
			return `must be "true" or "false"`
		}
		return ""
	case TypeEnum:
		for _, opt := range rule.Options {
			if value == opt {
				return ""
			}
		}
		return "must be one of: " + strings.Join(rule.Options, ", ")
	default:
		return fmt.Sprintf("unknown field type %q", rule.Type)
	}
}
