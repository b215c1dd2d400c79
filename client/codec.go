package client

import (
	"fmt"

	gogoproto "github.com/cosmos/gogoproto/proto"
	"google.golang.org/protobuf/encoding/protowire"
)

// gogoCodec marshals the SDK's gogoproto generated types without unpacking
// interfaces, so responses carrying Anys of unregistered types still decode.
type gogoCodec struct{}

func (gogoCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(gogoproto.Message)
	if !ok {
		return nil, fmt.Errorf("gogo codec: marshal %T", v)
	}
	return gogoproto.Marshal(msg)
}

func (gogoCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(gogoproto.Message)
	if !ok {
		return fmt.Errorf("gogo codec: unmarshal into %T", v)
	}
	return gogoproto.Unmarshal(data, msg)
}

func (gogoCodec) Name() string { return "proto" }

// rawMessage carries an already-encoded protobuf body through gRPC.
type rawMessage struct {
	bz []byte
}

// rawCodec passes protobuf bodies through untouched. It is applied per call
// with grpc.ForceCodec and reports the "proto" name so the content-type seen
// by the node stays application/grpc+proto. It is never registered globally.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("raw codec: marshal %T", v)
	}
	return msg.bz, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("raw codec: unmarshal into %T", v)
	}
	msg.bz = append(msg.bz[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }

// appendStringField and appendBytesField build the small request bodies of the
// confidential compute endpoints.
func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, bz []byte) []byte {
	if len(bz) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, bz)
}

// bytesField returns the last occurrence of a length-delimited field.
func bytesField(bz []byte, want protowire.Number) ([]byte, error) {
	var out []byte
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return nil, ErrMalformedReply.Wrap(protowire.ParseError(n).Error())
		}
		bz = bz[n:]
		if num == want && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(bz)
			if n < 0 {
				return nil, ErrMalformedReply.Wrap(protowire.ParseError(n).Error())
			}
			out = v
			bz = bz[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, bz)
		if n < 0 {
			return nil, ErrMalformedReply.Wrap(protowire.ParseError(n).Error())
		}
		bz = bz[n:]
	}
	return out, nil
}
