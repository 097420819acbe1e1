package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Member is a single key/value entry of an object
type Member struct {
	Key   string
	Value Value
}

// Value is a decoded JSON document. Objects keep their members in the
// order they appeared on the wire. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []Value
	members []Member
}

// NullValue returns the JSON null
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// NumberValue wraps a JSON number literal
func NumberValue(n json.Number) Value { return Value{kind: Number, number: n} }

// StringValue wraps a string
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ArrayValue builds an array from items
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// ObjectValue builds an object from members. A repeated key replaces the
// earlier value but keeps its position.
func ObjectValue(members ...Member) Value {
	v := Value{kind: Object, members: make([]Member, 0, len(members))}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

func (v *Value) set(key string, val Value) {
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Kind reports the variant held by v
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean held by v, if any
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == Bool
}

// AsString returns the string held by v, if any
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == String
}

// AsNumber returns the number literal held by v, if any
func (v Value) AsNumber() (json.Number, bool) {
	return v.number, v.kind == Number
}

// Items returns the elements of an array. The slice must not be modified.
func (v Value) Items() ([]Value, bool) {
	return v.items, v.kind == Array
}

// Members returns the entries of an object in wire order. The slice must
// not be modified.
func (v Value) Members() ([]Member, bool) {
	return v.members, v.kind == Object
}

// Get returns the member value stored under key
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Lookup walks nested objects along path, e.g. Lookup("permissions", "admin")
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Equal reports whether a and b hold the same document. Object member
// order is significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		return a.number == b.number
	case String:
		return a.str == b.str
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Decode reads exactly one JSON document from r. Trailing non-whitespace
// data is an error.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return Value{}, err
	}
	return v, nil
}

// Parse decodes a JSON document held in memory
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ArrayValue(items...), nil
		case '{':
			obj := Value{kind: Object, members: []Member{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return obj, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Member order is preserved.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.number == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(v.number.String())
		}
	case String:
		return encodeString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %v", v.kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

// String renders v as compact JSON
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid %v>", v.kind)
	}
	return string(data)
}
