package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Step is a single preparation step
type Step struct {
	Label string
	Text  string
}

// Steps is an ordered label -> text mapping.
// It serializes as a JSON object / BSON document whose key order is the slice order.
type Steps []Step

// Set replaces the text of an existing label in place, or appends a new step
func (s *Steps) Set(label, text string) {
	for i := range *s {
		if (*s)[i].Label == label {
			(*s)[i].Text = text
			return
		}
	}
	*s = append(*s, Step{Label: label, Text: text})
}

// Get returns the text stored under label
func (s Steps) Get(label string) (string, bool) {
	for _, step := range s {
		if step.Label == label {
			return step.Text, true
		}
	}
	return "", false
}

// Labels returns the step labels in order
func (s Steps) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, step := range s {
		labels = append(labels, step.Label)
	}
	return labels
}

// MarshalJSON writes the steps as a JSON object preserving order
func (s Steps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(step.Label)
		if err != nil {
			return nil, fmt.Errorf("marshal step label: %w", err)
		}
		value, err := marshalString(step.Text)
		if err != nil {
			return nil, fmt.Errorf("marshal step %q: %w", step.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string.
// The caller's encoder decides on HTML escaping: json.Marshal escapes <, > and &,
// an Encoder with SetEscapeHTML(false) keeps them.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalBSONValue writes the steps as an embedded document preserving order
func (s Steps) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(s))
	for _, step := range s {
		doc = append(doc, bson.E{Key: step.Label, Value: step.Text})
	}
	return bson.MarshalValue(doc)
}

// UnmarshalBSONValue reads an embedded document back into ordered steps
func (s *Steps) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null || t == bsontype.Undefined {
		*s = nil
		return nil
	}

	var doc bson.D
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&doc); err != nil {
		return fmt.Errorf("decode preparation steps: %w", err)
	}

	out := make(Steps, 0, len(doc))
	for _, e := range doc {
		text, _ := e.Value.(string)
		out = append(out, Step{Label: e.Key, Text: text})
	}
	*s = out
	return nil
}
