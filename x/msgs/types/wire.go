package types

import (
	"bytes"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"google.golang.org/protobuf/encoding/protowire"
)

// encodeMessage writes fields in schema (ascending number) order, skipping
// proto3 defaults the same way protoc-generated marshalers do.
func (r *Registry) encodeMessage(s *Schema, data map[string]any, prefix string) ([]byte, error) {
	var b []byte
	for i := range s.Fields {
		f := &s.Fields[i]
		v, ok := data[f.JSONName]
		if !ok || v == nil {
			continue
		}

		var err error
		if f.Repeated {
			items, ok := asList(v)
			if !ok {
				return nil, ErrInvalidField.Wrapf("%s.%s: expected list, got %T", s.Name, f.JSONName, v)
			}
			for _, item := range items {
				if b, err = r.appendField(b, s, f, item, prefix, true); err != nil {
					return nil, err
				}
			}
			continue
		}
		if b, err = r.appendField(b, s, f, v, prefix, false); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Registry) appendField(b []byte, s *Schema, f *FieldSpec, v any, prefix string, always bool) ([]byte, error) {
	switch f.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if str == "" && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendString(b, str), nil

	case KindBytes, KindAddressBytes:
		bz, ok := v.([]byte)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if len(bz) == 0 && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendBytes(b, bz), nil

	case KindAccAddress, KindValAddress:
		bz, ok := v.([]byte)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if len(bz) == 0 && !always {
			return b, nil
		}
		addr, err := encodeBech32(f.Kind, prefix, bz)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendString(b, addr), nil

	case KindUint64:
		n, ok := asUint64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if n == 0 && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.VarintType)
		return protowire.AppendVarint(b, n), nil

	case KindInt64:
		n, ok := asInt64(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if n == 0 && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(n)), nil

	case KindEnum:
		n, ok := asEnum(v)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if n == 0 && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(int64(n))), nil

	case KindBool:
		flag, ok := v.(bool)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		if !flag && !always {
			return b, nil
		}
		b = protowire.AppendTag(b, f.Number, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeBool(flag)), nil

	case KindMessage:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		inner, err := r.encodeMessage(f.Message, m, prefix)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendBytes(b, inner), nil

	case KindAny:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldTypeErr(s, f, v)
		}
		inner, err := r.encodeAny(m, prefix)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendBytes(b, inner), nil
	}

	return nil, ErrInvalidField.Wrapf("%s.%s: unknown kind %s", s.Name, f.JSONName, f.Kind)
}

func (r *Registry) encodeAny(m map[string]any, prefix string) ([]byte, error) {
	typeURL, _ := m[anyTypeURLKey].(string)
	desc, err := r.ByTypeURL(typeURL)
	if err != nil {
		return nil, err
	}
	value, _ := m[anyValueKey].(map[string]any)
	inner, err := r.encodeMessage(desc.Schema, value, prefix)
	if err != nil {
		return nil, err
	}
	packed := codectypes.Any{TypeUrl: typeURL, Value: inner}
	return packed.Marshal()
}

func (r *Registry) decodeMessage(s *Schema, bz []byte) (map[string]any, error) {
	out := make(map[string]any)
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return nil, ErrMalformedProto.Wrapf("%s: %s", s.Name, protowire.ParseError(n))
		}
		bz = bz[n:]

		f := s.FieldByNumber(num)
		if f == nil {
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return nil, ErrMalformedProto.Wrapf("%s: field %d: %s", s.Name, num, protowire.ParseError(n))
			}
			bz = bz[n:]
			continue
		}

		v, n, err := r.consumeField(s, f, typ, bz)
		if err != nil {
			return nil, err
		}
		bz = bz[n:]

		if f.Repeated {
			list, _ := out[f.JSONName].([]any)
			out[f.JSONName] = append(list, v)
		} else {
			out[f.JSONName] = v
		}
	}
	return out, nil
}

func (r *Registry) consumeField(s *Schema, f *FieldSpec, typ protowire.Type, bz []byte) (any, int, error) {
	if f.Kind.isVarint() {
		if typ != protowire.VarintType {
			return nil, 0, ErrMalformedProto.Wrapf("%s.%s: wire type %d", s.Name, f.JSONName, typ)
		}
		x, n := protowire.ConsumeVarint(bz)
		if n < 0 {
			return nil, 0, ErrMalformedProto.Wrapf("%s.%s: %s", s.Name, f.JSONName, protowire.ParseError(n))
		}
		switch f.Kind {
		case KindUint64:
			return x, n, nil
		case KindInt64:
			return int64(x), n, nil
		case KindEnum:
			return int32(x), n, nil
		default:
			return protowire.DecodeBool(x), n, nil
		}
	}

	if typ != protowire.BytesType {
		return nil, 0, ErrMalformedProto.Wrapf("%s.%s: wire type %d", s.Name, f.JSONName, typ)
	}
	raw, n := protowire.ConsumeBytes(bz)
	if n < 0 {
		return nil, 0, ErrMalformedProto.Wrapf("%s.%s: %s", s.Name, f.JSONName, protowire.ParseError(n))
	}

	switch f.Kind {
	case KindString:
		return string(raw), n, nil
	case KindBytes, KindAddressBytes:
		return bytes.Clone(raw), n, nil
	case KindAccAddress, KindValAddress:
		_, addr, err := bech32.DecodeAndConvert(string(raw))
		if err != nil {
			return nil, 0, ErrInvalidAddress.Wrapf("%s.%s: %s", s.Name, f.JSONName, err)
		}
		return addr, n, nil
	case KindMessage:
		m, err := r.decodeMessage(f.Message, raw)
		return m, n, err
	case KindAny:
		m, err := r.decodeAny(raw)
		return m, n, err
	}
	return nil, 0, ErrInvalidField.Wrapf("%s.%s: unknown kind %s", s.Name, f.JSONName, f.Kind)
}

// decodeAny resolves the packed type URL against the registry; an unknown
// nested type is an error rather than an opaque value.
func (r *Registry) decodeAny(bz []byte) (map[string]any, error) {
	var packed codectypes.Any
	if err := packed.Unmarshal(bz); err != nil {
		return nil, ErrMalformedProto.Wrapf("any: %s", err)
	}
	desc, err := r.ByTypeURL(packed.TypeUrl)
	if err != nil {
		return nil, err
	}
	value, err := r.decodeMessage(desc.Schema, packed.Value)
	if err != nil {
		return nil, err
	}
	return map[string]any{anyTypeURLKey: packed.TypeUrl, anyValueKey: value}, nil
}

func encodeBech32(kind FieldKind, prefix string, bz []byte) (string, error) {
	if prefix == "" {
		return "", ErrMissingPrefix
	}
	hrp := prefix
	if kind == KindValAddress {
		hrp = prefix + ValoperSuffix
	}
	addr, err := bech32.ConvertAndEncode(hrp, bz)
	if err != nil {
		return "", ErrInvalidAddress.Wrap(err.Error())
	}
	return addr, nil
}

func fieldTypeErr(s *Schema, f *FieldSpec, v any) error {
	return ErrInvalidField.Wrapf("%s.%s: unexpected %T for %s field", s.Name, f.JSONName, v, f.Kind)
}
