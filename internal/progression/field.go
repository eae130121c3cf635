package progression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// FieldKind tells how a baseline field carries its numeric magnitude, if it carries one at all.
type FieldKind int

const (
	// FieldOpaque is free text (or any non-numeric JSON value) with no usable magnitude, e.g. "Bodyweight".
	FieldOpaque FieldKind = iota
	// FieldNumeric is a plain JSON number, e.g. 3.
	FieldNumeric
	// FieldUnitSuffixed is a string with a leading number and a digit-free suffix, e.g. "10s" or "80kg".
	FieldUnitSuffixed
	// FieldEmbeddedNumeral is a string with a number somewhere inside it, e.g. "70% 1RM" or "+10kg".
	FieldEmbeddedNumeral
)

func (k FieldKind) String() string {
	switch k {
	case FieldNumeric:
		return "numeric"
	case FieldUnitSuffixed:
		return "unit-suffixed"
	case FieldEmbeddedNumeral:
		return "embedded-numeral"
	default:
		return "opaque"
	}
}

var (
	leadingNumeralRegex  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(\D*)$`)
	embeddedNumeralRegex = regexp.MustCompile(`([-+]?)(\d*\.?\d+)`)
)

// Field is one value of an exercise details record, parsed once when the record is loaded.
// Numeral keeps the textual form of the magnitude, so a field that is never projected
// renders back exactly as it was stored.
type Field struct {
	Kind    FieldKind
	Value   float64
	Numeral string
	Prefix  string
	Suffix  string
	Text    string

	// non-string, non-number JSON (bools, objects, null) is kept verbatim
	raw json.RawMessage
}

func Numeric(v float64) Field {
	return Field{
		Kind:    FieldNumeric,
		Value:   v,
		Numeral: formatNumber(v),
	}
}

func UnitSuffixed(v float64, suffix string) Field {
	return Field{
		Kind:    FieldUnitSuffixed,
		Value:   v,
		Numeral: formatNumber(v),
		Suffix:  suffix,
	}
}

func EmbeddedNumeral(prefix string, v float64, suffix string) Field {
	return Field{
		Kind:    FieldEmbeddedNumeral,
		Value:   v,
		Numeral: formatNumber(v),
		Prefix:  prefix,
		Suffix:  suffix,
	}
}

func Opaque(text string) Field {
	return Field{
		Kind: FieldOpaque,
		Text: text,
	}
}

// ParseField classifies a textual baseline value.
func ParseField(s string) Field {
	if m := leadingNumeralRegex.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Field{
				Kind:    FieldUnitSuffixed,
				Value:   v,
				Numeral: m[1],
				Suffix:  m[2],
			}
		}
	}

	loc := embeddedNumeralRegex.FindStringSubmatchIndex(s)
	if loc == nil {
		return Opaque(s)
	}

	sign := s[loc[2]:loc[3]]
	digits := s[loc[4]:loc[5]]
	prefix := s[:loc[2]]
	numeral := digits
	switch sign {
	case "+":
		// an explicit plus is a label ("+10kg" on a weighted pull-up), keep it in front of the number.
		// The numeral is replaced without its sign, so "+10kg" renders "+15.0kg" and not "15.0kg".
		prefix = s[:loc[3]]
	case "-":
		numeral = sign + digits
	}

	v, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return Opaque(s)
	}

	return Field{
		Kind:    FieldEmbeddedNumeral,
		Value:   v,
		Numeral: numeral,
		Prefix:  prefix,
		Suffix:  s[loc[5]:],
	}
}

// HasNumber reports whether the field carries a magnitude that can be projected.
func (f Field) HasNumber() bool {
	return f.Kind != FieldOpaque
}

// WithValue returns a copy of the field carrying a new magnitude, rendered with the given numeral text.
func (f Field) WithValue(v float64, numeral string) Field {
	f.Value = v
	f.Numeral = numeral
	return f
}

// Render returns the presentation form of the field.
func (f Field) Render() string {
	switch f.Kind {
	case FieldNumeric:
		return f.Numeral
	case FieldUnitSuffixed:
		return f.Numeral + f.Suffix
	case FieldEmbeddedNumeral:
		return f.Prefix + f.Numeral + f.Suffix
	default:
		if f.raw != nil {
			return string(f.raw)
		}
		return f.Text
	}
}

func (f Field) String() string {
	return f.Render()
}

func (f Field) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FieldNumeric:
		if f.Numeral == "" {
			return []byte(formatNumber(f.Value)), nil
		}
		return []byte(f.Numeral), nil
	case FieldOpaque:
		if f.raw != nil {
			return f.raw, nil
		}
		return json.Marshal(f.Text)
	default:
		return json.Marshal(f.Render())
	}
}

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty field value")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal field string: %w", err)
		}
		*f = ParseField(s)
		return nil
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = Field{
			Kind:    FieldNumeric,
			Value:   v,
			Numeral: string(data),
		}
		return nil
	}

	*f = Field{
		Kind: FieldOpaque,
		raw:  append(json.RawMessage(nil), data...),
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
