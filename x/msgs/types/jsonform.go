package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

type jsonStyle int

const (
	// styleAmino: snake_case keys, every address bech32, Any as {type,value}.
	styleAmino jsonStyle = iota
	// styleProtoJSON: camelCase keys, address bytes base64, Any inlined with "@type".
	styleProtoJSON
)

const protoJSONTypeKey = "@type"

func (st jsonStyle) key(f *FieldSpec) string {
	if st == styleAmino {
		return f.Name
	}
	return f.JSONName
}

func (st jsonStyle) lookup(s *Schema, key string) *FieldSpec {
	if st == styleAmino {
		return s.FieldByName(key)
	}
	return s.FieldByJSONName(key)
}

// ToAmino renders canonical data as an Amino message, dropping omitted fields.
func (d *MessageDescriptor) ToAmino(data map[string]any, prefix string) (AminoMsg, error) {
	if prefix == "" {
		return AminoMsg{}, ErrMissingPrefix.Wrapf("converting %s", d.TypeURL)
	}
	value, err := d.registry.toJSONForm(styleAmino, d.Schema, data, prefix, d.Omits)
	if err != nil {
		return AminoMsg{}, err
	}
	return AminoMsg{Type: d.AminoType, Value: value}, nil
}

// FromAmino parses an Amino value into canonical data and returns the
// account prefix its addresses were encoded with.
func (d *MessageDescriptor) FromAmino(value map[string]any) (map[string]any, string, error) {
	var pt prefixTracker
	data, err := d.registry.fromJSONForm(styleAmino, d.Schema, value, &pt)
	if err != nil {
		return nil, "", err
	}
	return data, pt.prefix, nil
}

// ToJSON renders canonical data as proto JSON.
func (d *MessageDescriptor) ToJSON(data map[string]any, prefix string) ([]byte, error) {
	value, err := d.registry.toJSONForm(styleProtoJSON, d.Schema, data, prefix, nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// FromJSON parses proto JSON into canonical data.
func (d *MessageDescriptor) FromJSON(bz []byte) (map[string]any, string, error) {
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.UseNumber()
	var value map[string]any
	if err := dec.Decode(&value); err != nil {
		return nil, "", ErrInvalidField.Wrapf("%s: %s", d.TypeURL, err)
	}
	var pt prefixTracker
	data, err := d.registry.fromJSONForm(styleProtoJSON, d.Schema, value, &pt)
	if err != nil {
		return nil, "", err
	}
	return data, pt.prefix, nil
}

func (r *Registry) toJSONForm(st jsonStyle, s *Schema, data map[string]any, prefix string, omit func(string) bool) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for i := range s.Fields {
		f := &s.Fields[i]
		if omit != nil && omit(f.Name) {
			continue
		}
		v, ok := data[f.JSONName]
		if !ok || v == nil {
			// proto3 drops empty lists; amino always carries the key
			if f.Repeated && st == styleAmino {
				out[st.key(f)] = []any{}
			}
			continue
		}

		if f.Repeated {
			items, ok := asList(v)
			if !ok {
				return nil, fieldTypeErr(s, f, v)
			}
			list := make([]any, 0, len(items))
			for _, item := range items {
				conv, err := r.toJSONValue(st, s, f, item, prefix)
				if err != nil {
					return nil, err
				}
				list = append(list, conv)
			}
			out[st.key(f)] = list
			continue
		}

		conv, err := r.toJSONValue(st, s, f, v, prefix)
		if err != nil {
			return nil, err
		}
		out[st.key(f)] = conv
	}
	return out, nil
}

func (r *Registry) toJSONValue(st jsonStyle, s *Schema, f *FieldSpec, v any, prefix string) (any, error) {
	switch f.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return str, nil

	case KindBytes:
		bz, ok := v.([]byte)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return base64.StdEncoding.EncodeToString(bz), nil

	case KindAddressBytes, KindAccAddress, KindValAddress:
		bz, ok := v.([]byte)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if f.Kind == KindAddressBytes && st == styleProtoJSON {
			return base64.StdEncoding.EncodeToString(bz), nil
		}
		return encodeBech32(f.Kind, prefix, bz)

	case KindUint64:
		n, ok := asUint64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return strconv.FormatUint(n, 10), nil

	case KindInt64:
		n, ok := asInt64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return strconv.FormatInt(n, 10), nil

	case KindEnum:
		n, ok := asEnum(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return n, nil

	case KindBool:
		flag, ok := v.(bool)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return flag, nil

	case KindMessage:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return r.toJSONForm(st, f.Message, m, prefix, nil)

	case KindAny:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		typeURL, _ := m[anyTypeURLKey].(string)
		desc, err := r.ByTypeURL(typeURL)
		if err != nil {
			return nil, err
		}
		value, _ := m[anyValueKey].(map[string]any)
		if st == styleAmino {
			inner, err := r.toJSONForm(st, desc.Schema, value, prefix, desc.Omits)
			if err != nil {
				return nil, err
			}
			return map[string]any{"type": desc.AminoType, "value": inner}, nil
		}
		inner, err := r.toJSONForm(st, desc.Schema, value, prefix, nil)
		if err != nil {
			return nil, err
		}
		inner[protoJSONTypeKey] = typeURL
		return inner, nil
	}

	return nil, ErrInvalidField.Wrapf("%s.%s: unknown kind %s", s.Name, f.JSONName, f.Kind)
}

func (r *Registry) fromJSONForm(st jsonStyle, s *Schema, value map[string]any, pt *prefixTracker) (map[string]any, error) {
	out := make(map[string]any, len(value))
	for key, v := range value {
		if st == styleProtoJSON && key == protoJSONTypeKey {
			continue
		}
		f := st.lookup(s, key)
		if f == nil {
			return nil, ErrInvalidField.Wrapf("%s: unknown field %q", s.Name, key)
		}
		if v == nil {
			continue
		}

		if f.Repeated {
			items, ok := asList(v)
			if !ok {
				return nil, fieldTypeErr(s, f, v)
			}
			list := make([]any, 0, len(items))
			for _, item := range items {
				conv, err := r.fromJSONValue(st, s, f, item, pt)
				if err != nil {
					return nil, err
				}
				list = append(list, conv)
			}
			out[f.JSONName] = list
			continue
		}

		conv, err := r.fromJSONValue(st, s, f, v, pt)
		if err != nil {
			return nil, err
		}
		out[f.JSONName] = conv
	}
	return out, nil
}

func (r *Registry) fromJSONValue(st jsonStyle, s *Schema, f *FieldSpec, v any, pt *prefixTracker) (any, error) {
	switch f.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return str, nil

	case KindBytes:
		return decodeBase64Field(s, f, v)

	case KindAddressBytes, KindAccAddress, KindValAddress:
		if f.Kind == KindAddressBytes && st == styleProtoJSON {
			return decodeBase64Field(s, f, v)
		}
		str, ok := v.(string)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		hrp, bz, err := bech32.DecodeAndConvert(str)
		if err != nil {
			return nil, ErrInvalidAddress.Wrapf("%s.%s: %s", s.Name, f.Name, err)
		}
		if err := pt.observe(hrp, f.Kind); err != nil {
			return nil, err
		}
		return bz, nil

	case KindUint64:
		n, ok := asUint64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return n, nil

	case KindInt64:
		n, ok := asInt64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return n, nil

	case KindEnum:
		n, ok := asEnum(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return n, nil

	case KindBool:
		flag, ok := v.(bool)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return flag, nil

	case KindMessage:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		return r.fromJSONForm(st, f.Message, m, pt)

	case KindAny:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		var (
			desc  *MessageDescriptor
			inner map[string]any
			err   error
		)
		if st == styleAmino {
			aminoType, _ := m["type"].(string)
			if desc, err = r.ByAminoType(aminoType); err != nil {
				return nil, err
			}
			inner, _ = m["value"].(map[string]any)
		} else {
			typeURL, _ := m[protoJSONTypeKey].(string)
			if desc, err = r.ByTypeURL(typeURL); err != nil {
				return nil, err
			}
			inner = m
		}
		value, err := r.fromJSONForm(st, desc.Schema, inner, pt)
		if err != nil {
			return nil, err
		}
		return map[string]any{anyTypeURLKey: desc.TypeURL, anyValueKey: value}, nil
	}

	return nil, ErrInvalidField.Wrapf("%s.%s: unknown kind %s", s.Name, f.JSONName, f.Kind)
}

func decodeBase64Field(s *Schema, f *FieldSpec, v any) ([]byte, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fieldTypeErr(s, f, v)
	}
	bz, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return nil, ErrInvalidField.Wrapf("%s.%s: %s", s.Name, f.Name, err)
	}
	return bz, nil
}

// prefixTracker records the account prefix shared by every address in a
// message. Validator addresses contribute their prefix minus ValoperSuffix.
type prefixTracker struct {
	prefix string
}

func (pt *prefixTracker) observe(hrp string, kind FieldKind) error {
	if kind == KindValAddress {
		trimmed := strings.TrimSuffix(hrp, ValoperSuffix)
		if trimmed == hrp {
			return ErrInvalidAddress.Wrapf("%s is not a validator address prefix", hrp)
		}
		hrp = trimmed
	}
	if pt.prefix == "" {
		pt.prefix = hrp
		return nil
	}
	if pt.prefix != hrp {
		return ErrInvalidAddress.Wrapf("mixed address prefixes %s and %s", pt.prefix, hrp)
	}
	return nil
}
