package notion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DecodedPage is the flat scalar/array form of one remote record, ready for
// relational storage.
type DecodedPage struct {
	ID             string
	CreatedTime    time.Time
	LastEditedTime time.Time
	Properties     map[string]interface{}
}

// DecodePage flattens a remote record's typed properties into plain scalars
// and arrays. Decoding never fails: unknown property types and unrecognized
// formula result types decode to nil.
func DecodePage(page Page) DecodedPage {
	decoded := DecodedPage{
		ID:             page.ID,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		Properties:     make(map[string]interface{}, len(page.Properties)),
	}
	for name, value := range page.Properties {
		decoded.Properties[name] = decodeProperty(value)
	}
	return decoded
}

func decodeProperty(value PropertyValue) interface{} {
	switch value.Type {
	case TypeTitle:
		return plainText(value.Title)
	case TypeRichText:
		return plainText(value.RichText)
	case TypeNumber:
		if value.Number == nil {
			return nil
		}
		return *value.Number
	case TypeCheckbox:
		if value.Checkbox == nil {
			return nil
		}
		return *value.Checkbox
	case TypeURL:
		return derefString(value.URL)
	case TypeEmail:
		return derefString(value.Email)
	case TypePhoneNumber:
		return derefString(value.PhoneNumber)
	case TypeSelect:
		if value.Select == nil {
			return nil
		}
		return value.Select.Name
	case TypeMultiSelect:
		names := make([]string, 0, len(value.MultiSelect))
		for _, option := range value.MultiSelect {
			names = append(names, option.Name)
		}
		return names
	case TypeDate:
		if value.Date == nil {
			return nil
		}
		return value.Date.Start
	case TypeFormula:
		return decodeFormula(value.Formula)
	default:
		return nil
	}
}

// decodeFormula resolves a computed property by its declared result type, not
// the formula type tag. Unrecognized result types decode to nil.
func decodeFormula(formula *FormulaValue) interface{} {
	if formula == nil {
		return nil
	}
	switch formula.Type {
	case "string":
		return derefString(formula.String)
	case "number":
		if formula.Number == nil {
			return nil
		}
		return *formula.Number
	case "boolean":
		if formula.Boolean == nil {
			return nil
		}
		return *formula.Boolean
	case "date":
		if formula.Date == nil {
			return nil
		}
		return formula.Date.Start
	default:
		return nil
	}
}

// EncodeRow wraps a flat row's fields into typed property payloads according
// to the target schema. Fields absent from the schema are skipped, so extra
// columns never fail the encode. The only error condition is a schema
// declaring a type with no encoding rule.
func EncodeRow(row map[string]interface{}, schema Schema) (map[string]PropertyValue, error) {
	properties := make(map[string]PropertyValue)
	for name, value := range row {
		declaredType, ok := schema[name]
		if !ok {
			continue
		}
		property, err := encodeProperty(value, declaredType)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		properties[name] = property
	}
	return properties, nil
}

// CanEncode reports whether the codec has an encoding rule for the declared
// type. Computed properties are read-only on the remote side and cannot be
// encoded.
func CanEncode(declaredType PropertyType) bool {
	switch declaredType {
	case TypeTitle, TypeRichText, TypeNumber, TypeSelect, TypeMultiSelect,
		TypeDate, TypeCheckbox, TypeURL, TypeEmail, TypePhoneNumber:
		return true
	default:
		return false
	}
}

func encodeProperty(value interface{}, declaredType PropertyType) (PropertyValue, error) {
	switch declaredType {
	case TypeTitle:
		return PropertyValue{Type: TypeTitle, Title: textRuns(value)}, nil
	case TypeRichText:
		return PropertyValue{Type: TypeRichText, RichText: textRuns(value)}, nil
	case TypeNumber:
		return PropertyValue{Type: TypeNumber, Number: toNumber(value)}, nil
	case TypeCheckbox:
		return PropertyValue{Type: TypeCheckbox, Checkbox: toBool(value)}, nil
	case TypeURL:
		return PropertyValue{Type: TypeURL, URL: toStringPtr(value)}, nil
	case TypeEmail:
		return PropertyValue{Type: TypeEmail, Email: toStringPtr(value)}, nil
	case TypePhoneNumber:
		return PropertyValue{Type: TypePhoneNumber, PhoneNumber: toStringPtr(value)}, nil
	case TypeSelect:
		if value == nil {
			return PropertyValue{Type: TypeSelect}, nil
		}
		return PropertyValue{Type: TypeSelect, Select: &SelectOption{Name: stringify(value)}}, nil
	case TypeMultiSelect:
		options := make([]SelectOption, 0)
		for _, element := range toList(value) {
			options = append(options, SelectOption{Name: stringify(element)})
		}
		return PropertyValue{Type: TypeMultiSelect, MultiSelect: options}, nil
	case TypeDate:
		if value == nil {
			return PropertyValue{Type: TypeDate}, nil
		}
		return PropertyValue{Type: TypeDate, Date: &DateValue{Start: stringify(value)}}, nil
	default:
		return PropertyValue{}, fmt.Errorf("%w: %s", ErrUnsupportedPropertyType, declaredType)
	}
}

// plainText concatenates the plain-text runs of rich-text segments in order.
// An empty list yields an empty string.
func plainText(segments []RichText) string {
	text := ""
	for _, segment := range segments {
		if segment.PlainText != "" {
			text += segment.PlainText
		} else if segment.Text != nil {
			text += segment.Text.Content
		}
	}
	return text
}

func textRuns(value interface{}) []RichText {
	if value == nil {
		return []RichText{}
	}
	content := stringify(value)
	return []RichText{{
		Type:      "text",
		Text:      &TextSpan{Content: content},
		PlainText: content,
	}}
}

func derefString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// toNumber coerces a relational value into the remote number payload.
// Uncoercible values encode as null rather than failing the row.
func toNumber(value interface{}) *float64 {
	var number float64
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int32:
		number = float64(v)
	case int64:
		number = float64(v)
	case uint:
		number = float64(v)
	case uint64:
		number = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		number = parsed
	default:
		return nil
	}
	return &number
}

func toBool(value interface{}) *bool {
	var truth bool
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		truth = v
	case int64:
		// sqlite stores booleans as integers
		truth = v != 0
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil
		}
		truth = parsed
	default:
		return nil
	}
	return &truth
}

func toStringPtr(value interface{}) *string {
	if value == nil {
		return nil
	}
	text := stringify(value)
	return &text
}

func toList(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case []string:
		elements := make([]interface{}, len(v))
		for i, element := range v {
			elements[i] = element
		}
		return elements
	case string:
		// multi-choice values round-trip through relational text columns as
		// JSON arrays
		if len(v) > 0 && v[0] == '[' {
			var elements []interface{}
			if err := json.Unmarshal([]byte(v), &elements); err == nil {
				return elements
			}
		}
		return []interface{}{v}
	default:
		return []interface{}{v}
	}
}
