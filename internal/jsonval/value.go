// Package jsonval provides an order-preserving JSON value tree and a deep
// structural diff over it. The shell's tojson() output embeds JSON objects in
// log lines; diagnostics must render keys in the order they appeared, which
// rules out map[string]any.
package jsonval

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind identifies the dynamic shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. Numbers keep their original text so
// rendering round-trips exactly (1 stays 1, not 1.000000).
type Value struct {
	Kind    Kind
	Bool    bool
	Num     float64
	NumRaw  string
	Str     string
	Items   []Value
	Members []Member
}

// Parse decodes a JSON document into a Value, preserving object key order.
// A later duplicate key replaces the earlier one.
func Parse(s string) (Value, error) {
	if !gjson.Valid(s) {
		return Value{}, fmt.Errorf("invalid JSON: %q", s)
	}
	return fromResult(gjson.Parse(s)), nil
}

func fromResult(r gjson.Result) Value {
	switch {
	case r.IsObject():
		v := Value{Kind: KindObject}
		index := make(map[string]int)
		r.ForEach(func(key, val gjson.Result) bool {
			m := Member{Key: key.String(), Value: fromResult(val)}
			if i, ok := index[m.Key]; ok {
				v.Members[i] = m
				return true
			}
			index[m.Key] = len(v.Members)
			v.Members = append(v.Members, m)
			return true
		})
		return v
	case r.IsArray():
		v := Value{Kind: KindArray}
		r.ForEach(func(_, val gjson.Result) bool {
			v.Items = append(v.Items, fromResult(val))
			return true
		})
		return v
	case r.Type == gjson.String:
		return Value{Kind: KindString, Str: r.Str}
	case r.Type == gjson.Number:
		return Value{Kind: KindNumber, Num: r.Num, NumRaw: r.Raw}
	case r.Type == gjson.True:
		return Value{Kind: KindBool, Bool: true}
	case r.Type == gjson.False:
		return Value{Kind: KindBool}
	default:
		return Value{Kind: KindNull}
	}
}

// member returns the value for key and whether it exists.
func (v Value) member(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality by value. Object comparison is key-order
// insensitive; array comparison is positional.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for _, m := range a.Members {
			other, ok := b.member(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// String serializes the value as compact JSON, preserving object key order.
func (v Value) String() string {
	return string(v.appendJSON(nil))
}

func (v Value) appendJSON(buf []byte) []byte {
	switch v.Kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if v.Bool {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindNumber:
		return append(buf, v.NumRaw...)
	case KindString:
		return appendQuoted(buf, v.Str)
	case KindArray:
		buf = append(buf, '[')
		for i, item := range v.Items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = item.appendJSON(buf)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, m := range v.Members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendQuoted(buf, m.Key)
			buf = append(buf, ':')
			buf = m.Value.appendJSON(buf)
		}
		return append(buf, '}')
	}
	return buf
}

// appendQuoted appends s as a JSON string, delegating escaping to
// encoding/json so the output stays standard.
func appendQuoted(buf []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail; keep the diagnostic readable anyway.
		return append(buf, fmt.Sprintf("%q", s)...)
	}
	return append(buf, b...)
}
