package types

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"google.golang.org/protobuf/encoding/protowire"
)

// FieldKind selects how a field is represented on the wire, in canonical
// decoded form and in Amino JSON.
type FieldKind int

const (
	KindString FieldKind = iota
	KindBytes
	KindUint64
	KindInt64
	KindBool
	KindEnum
	KindMessage
	KindAny
	// KindAddressBytes is an account address carried as raw bytes on the wire.
	KindAddressBytes
	// KindAccAddress is an account address carried as a bech32 string on the wire.
	KindAccAddress
	// KindValAddress is a validator operator address carried as a bech32 string on the wire.
	KindValAddress
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindUint64:
		return "uint64"
	case KindInt64:
		return "int64"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindMessage:
		return "message"
	case KindAny:
		return "any"
	case KindAddressBytes:
		return "address_bytes"
	case KindAccAddress:
		return "acc_address"
	case KindValAddress:
		return "val_address"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsAddress reports whether values of this kind are addresses.
func (k FieldKind) IsAddress() bool {
	return k == KindAddressBytes || k == KindAccAddress || k == KindValAddress
}

func (k FieldKind) isVarint() bool {
	return k == KindUint64 || k == KindInt64 || k == KindBool || k == KindEnum
}

// FieldSpec describes one proto field. Name is the snake_case proto name,
// which is also the Amino JSON key; JSONName is the camelCase proto JSON key.
type FieldSpec struct {
	Number   protowire.Number
	Name     string
	JSONName string
	Kind     FieldKind
	Repeated bool
	Message  *Schema
}

// Schema is the field layout of one proto message.
type Schema struct {
	Name   string
	Fields []FieldSpec

	byNumber map[protowire.Number]*FieldSpec
	byName   map[string]*FieldSpec
	byJSON   map[string]*FieldSpec
}

// NewSchema indexes fields by number and by both key spellings. Fields must be
// listed in ascending number order so encoding matches protoc output.
func NewSchema(name string, fields ...FieldSpec) *Schema {
	s := &Schema{
		Name:     name,
		Fields:   fields,
		byNumber: make(map[protowire.Number]*FieldSpec, len(fields)),
		byName:   make(map[string]*FieldSpec, len(fields)),
		byJSON:   make(map[string]*FieldSpec, len(fields)),
	}
	var last protowire.Number
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Number <= last {
			panic(fmt.Sprintf("schema %s: field %s out of order", name, f.Name))
		}
		last = f.Number
		if f.JSONName == "" {
			f.JSONName = strcase.ToLowerCamel(f.Name)
		}
		if (f.Kind == KindMessage) != (f.Message != nil) {
			panic(fmt.Sprintf("schema %s: field %s message schema mismatch", name, f.Name))
		}
		s.byNumber[f.Number] = f
		s.byName[f.Name] = f
		s.byJSON[f.JSONName] = f
	}
	return s
}

func (s *Schema) FieldByNumber(n protowire.Number) *FieldSpec { return s.byNumber[n] }

// FieldByName looks a field up by its snake_case (Amino) key.
func (s *Schema) FieldByName(name string) *FieldSpec { return s.byName[name] }

// FieldByJSONName looks a field up by its camelCase (proto JSON) key.
func (s *Schema) FieldByJSONName(name string) *FieldSpec { return s.byJSON[name] }

func field(n protowire.Number, name string, kind FieldKind) FieldSpec {
	return FieldSpec{Number: n, Name: name, Kind: kind}
}

func repeated(f FieldSpec) FieldSpec {
	f.Repeated = true
	return f
}

func message(n protowire.Number, name string, s *Schema) FieldSpec {
	return FieldSpec{Number: n, Name: name, Kind: KindMessage, Message: s}
}
