package firestore

import (
	"strconv"
	"time"
)

// Value is a tagged Firestore field value. Exactly one of the members is set.
// Integer values travel as decimal strings on the wire.
type Value struct {
	IntegerValue   string      `json:"integerValue,omitempty"`
	StringValue    string      `json:"stringValue,omitempty"`
	TimestampValue string      `json:"timestampValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
}

// ArrayValue wraps an ordered list of values.
type ArrayValue struct {
	Values []Value `json:"values"`
}

// Document is a flat Firestore document: a mapping from field name to a
// tagged value. Unknown fields in a fetched document are ignored.
type Document struct {
	Fields map[string]Value `json:"fields"`
}

// NewDocument returns an empty document ready for field assignment.
func NewDocument() *Document {
	return &Document{Fields: map[string]Value{}}
}

func (d *Document) SetInteger(name string, value int) *Document {
	d.Fields[name] = Value{IntegerValue: strconv.Itoa(value)}
	return d
}

func (d *Document) SetString(name, value string) *Document {
	d.Fields[name] = Value{StringValue: value}
	return d
}

func (d *Document) SetTimestamp(name string, t time.Time) *Document {
	d.Fields[name] = Value{TimestampValue: t.Format(time.RFC3339)}
	return d
}

func (d *Document) SetStringArray(name string, values []string) *Document {
	arr := &ArrayValue{Values: make([]Value, 0, len(values))}
	for _, v := range values {
		arr.Values = append(arr.Values, Value{StringValue: v})
	}
	d.Fields[name] = arr.toValue()
	return d
}

func (a *ArrayValue) toValue() Value {
	return Value{ArrayValue: a}
}

// Integer returns the named field as an integer. The second return value is
// false when the field is absent or not a parseable integer. Like the other
// accessors, an empty tagged value is indistinguishable from an absent
// field; callers apply their own defaults in both cases.
func (d *Document) Integer(name string) (int, bool) {
	v, ok := d.Fields[name]
	if !ok || v.IntegerValue == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v.IntegerValue)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the named field as a string. An explicitly empty string
// is reported as absent, so defaulting callers treat "" and a missing
// field the same way.
func (d *Document) String(name string) (string, bool) {
	v, ok := d.Fields[name]
	if !ok || v.StringValue == "" {
		return "", false
	}
	return v.StringValue, true
}

// Timestamp returns the named field as a time. Malformed timestamps are
// reported as absent rather than as errors.
func (d *Document) Timestamp(name string) (time.Time, bool) {
	v, ok := d.Fields[name]
	if !ok || v.TimestampValue == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v.TimestampValue)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StringArray returns the named array field's string members. Non-string
// members are skipped. An absent or malformed field yields an empty slice.
func (d *Document) StringArray(name string) []string {
	v, ok := d.Fields[name]
	if !ok || v.ArrayValue == nil {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue.Values))
	for _, item := range v.ArrayValue.Values {
		if item.StringValue != "" {
			out = append(out, item.StringValue)
		}
	}
	return out
}
