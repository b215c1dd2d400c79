package types

import (
	"sort"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
)

// MessageDescriptor binds the two identities of a message to its schema.
type MessageDescriptor struct {
	AminoType string
	TypeURL   string
	Schema    *Schema
	// AminoOmit lists proto fields (snake_case) hidden from the Amino form.
	AminoOmit map[string]struct{}
	// SignerField names the address field that must sign the message.
	SignerField string

	registry *Registry
}

func NewMessageDescriptor(aminoType, typeURL string, schema *Schema, omit ...string) *MessageDescriptor {
	d := &MessageDescriptor{
		AminoType: aminoType,
		TypeURL:   typeURL,
		Schema:    schema,
		AminoOmit: make(map[string]struct{}, len(omit)),
	}
	for _, name := range omit {
		d.AminoOmit[name] = struct{}{}
	}
	return d
}

func (d *MessageDescriptor) WithSigner(field string) *MessageDescriptor {
	d.SignerField = field
	return d
}

func (d *MessageDescriptor) Omits(name string) bool {
	_, ok := d.AminoOmit[name]
	return ok
}

// Encode serializes canonical data to proto bytes. The prefix renders
// bech32 string address fields.
func (d *MessageDescriptor) Encode(data map[string]any, prefix string) ([]byte, error) {
	return d.registry.encodeMessage(d.Schema, data, prefix)
}

// Decode parses proto bytes into canonical data.
func (d *MessageDescriptor) Decode(bz []byte) (map[string]any, error) {
	return d.registry.decodeMessage(d.Schema, bz)
}

// AminoMsg is the legacy JSON form of a message.
type AminoMsg struct {
	Type  string         `json:"type"`
	Value map[string]any `json:"value"`
}

// CanonicalMessage is a message in canonical decoded form, keyed by its
// proto type URL.
type CanonicalMessage struct {
	ID     string
	Data   map[string]any
	Prefix string

	desc *MessageDescriptor
}

func NewCanonicalMessage(desc *MessageDescriptor, data map[string]any, prefix string) *CanonicalMessage {
	return &CanonicalMessage{ID: desc.TypeURL, Data: data, Prefix: prefix, desc: desc}
}

func (m *CanonicalMessage) Descriptor() *MessageDescriptor { return m.desc }

// Signer returns the address bytes of the signer field, if the message type
// declares one and it is set.
func (m *CanonicalMessage) Signer() ([]byte, bool) {
	if m.desc.SignerField == "" {
		return nil, false
	}
	f := m.desc.Schema.FieldByName(m.desc.SignerField)
	if f == nil {
		return nil, false
	}
	bz, ok := m.Data[f.JSONName].([]byte)
	return bz, ok && len(bz) > 0
}

// Encode returns the message packed as an Any.
func (m *CanonicalMessage) Encode() (*codectypes.Any, error) {
	bz, err := m.desc.Encode(m.Data, m.Prefix)
	if err != nil {
		return nil, err
	}
	return &codectypes.Any{TypeUrl: m.ID, Value: bz}, nil
}

// Registry is a flat lookup table of message descriptors keyed by both
// identities.
type Registry struct {
	byAmino map[string]*MessageDescriptor
	byURL   map[string]*MessageDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		byAmino: make(map[string]*MessageDescriptor),
		byURL:   make(map[string]*MessageDescriptor),
	}
}

// Register adds copies of descs bound to r. Either identity already present
// fails the call and leaves the registry unchanged.
func (r *Registry) Register(descs ...*MessageDescriptor) error {
	seenAmino := make(map[string]struct{}, len(descs))
	seenURL := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if d.AminoType == "" || d.TypeURL == "" || d.Schema == nil {
			return ErrInvalidField.Wrapf("incomplete descriptor %q", d.TypeURL)
		}
		if _, ok := r.byAmino[d.AminoType]; ok {
			return ErrDuplicateDescriptor.Wrapf("amino type %s", d.AminoType)
		}
		if _, ok := r.byURL[d.TypeURL]; ok {
			return ErrDuplicateDescriptor.Wrapf("type url %s", d.TypeURL)
		}
		if _, ok := seenAmino[d.AminoType]; ok {
			return ErrDuplicateDescriptor.Wrapf("amino type %s", d.AminoType)
		}
		if _, ok := seenURL[d.TypeURL]; ok {
			return ErrDuplicateDescriptor.Wrapf("type url %s", d.TypeURL)
		}
		seenAmino[d.AminoType] = struct{}{}
		seenURL[d.TypeURL] = struct{}{}
	}

	for _, d := range descs {
		bound := *d
		bound.registry = r
		r.byAmino[bound.AminoType] = &bound
		r.byURL[bound.TypeURL] = &bound
	}
	return nil
}

func (r *Registry) ByAminoType(aminoType string) (*MessageDescriptor, error) {
	d, ok := r.byAmino[aminoType]
	if !ok {
		return nil, ErrUnsupportedMessage.Wrapf("amino type %q", aminoType)
	}
	return d, nil
}

func (r *Registry) ByTypeURL(typeURL string) (*MessageDescriptor, error) {
	if r == nil {
		return nil, ErrUnsupportedMessage.Wrapf("type url %q: descriptor not registered", typeURL)
	}
	d, ok := r.byURL[typeURL]
	if !ok {
		return nil, ErrUnsupportedMessage.Wrapf("type url %q", typeURL)
	}
	return d, nil
}

// Descriptors returns all descriptors ordered by type URL.
func (r *Registry) Descriptors() []*MessageDescriptor {
	out := make([]*MessageDescriptor, 0, len(r.byURL))
	for _, d := range r.byURL {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeURL < out[j].TypeURL })
	return out
}
