// SPDX-License-Identifier: EPL-2.0

package serialize

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ik5/audxf/transform"
)

const (
	// Magic marks every encoded transform.
	Magic = "audxf"
	// Version is the format version Export writes and Reconstruct reads.
	Version = 1
)

// envelope is the outer record of an encoded transform. Config holds the
// msgpack encoding of the kind's config struct, or of the list of step
// envelopes for a Sequential.
type envelope struct {
	Magic   string `msgpack:"magic"`
	Version int    `msgpack:"version"`
	Kind    string `msgpack:"kind"`
	Config  []byte `msgpack:"config"`
}

// Serialized is an exported transform: an opaque, versioned encoding of its
// kind and config.
type Serialized struct {
	kind transform.Kind
	data []byte
}

// Kind is the kind recorded in the encoding.
func (s Serialized) Kind() transform.Kind { return s.kind }

// Bytes returns a copy of the encoding.
func (s Serialized) Bytes() []byte { return bytes.Clone(s.data) }

// Fingerprint is a short hex digest of the encoding. Equal transforms have
// equal fingerprints.
func (s Serialized) Fingerprint() string {
	return fmt.Sprintf("%016x", xxhash.Sum64(s.data))
}

// Export encodes t. The encoding is deterministic: exporting the same
// transform twice gives identical bytes.
func Export(t transform.Transform) (Serialized, error) {
	if t == nil {
		return Serialized{}, fmt.Errorf("%w: nil transform", transform.ErrInvalidConfig)
	}
	data, err := encodeConfig(t.Config())
	if err != nil {
		return Serialized{}, err
	}
	logrus.WithFields(logrus.Fields{
		"kind":  t.Kind(),
		"bytes": len(data),
	}).Debug("transform exported")
	return Serialized{kind: t.Kind(), data: data}, nil
}

func encodeConfig(cfg transform.Config) ([]byte, error) {
	var payload any = cfg
	if seq, ok := cfg.(transform.SequentialConfig); ok {
		steps := make([][]byte, len(seq.Steps))
		for i, step := range seq.Steps {
			if step == nil {
				return nil, fmt.Errorf("%w: sequential step %d has no config", transform.ErrInvalidConfig, i)
			}
			b, err := encodeConfig(step)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			steps[i] = b
		}
		payload = steps
	}
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s config: %w", cfg.Kind(), err)
	}
	data, err := msgpack.Marshal(&envelope{
		Magic:   Magic,
		Version: Version,
		Kind:    string(cfg.Kind()),
		Config:  body,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", cfg.Kind(), err)
	}
	return data, nil
}

// FromBytes checks the envelope of an encoding and wraps it as a
// Serialized. The config itself is decoded by Reconstruct.
func FromBytes(data []byte) (Serialized, error) {
	env, err := decodeEnvelope(data)
	if err != nil {
		return Serialized{}, err
	}
	return Serialized{kind: transform.Kind(env.Kind), data: bytes.Clone(data)}, nil
}

// Reconstruct rebuilds the transform s was exported from. The result
// behaves identically to the original.
func Reconstruct(s Serialized) (transform.Transform, error) {
	cfg, err := decodeConfig(s.data)
	if err != nil {
		return nil, err
	}
	t, err := transform.New(cfg)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"kind":  t.Kind(),
		"bytes": len(s.data),
	}).Debug("transform reconstructed")
	return t, nil
}

// DecodeConfig returns the config held in an encoding without building the
// transform.
func DecodeConfig(data []byte) (transform.Config, error) {
	return decodeConfig(data)
}

// Marshal is Export followed by Bytes.
func Marshal(t transform.Transform) ([]byte, error) {
	s, err := Export(t)
	if err != nil {
		return nil, err
	}
	return s.data, nil
}

// Unmarshal rebuilds a transform from bytes produced by Marshal.
func Unmarshal(data []byte) (transform.Transform, error) {
	s, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	return Reconstruct(s)
}

// header is the part of an envelope every format version shares.
type header struct {
	Magic   string `msgpack:"magic"`
	Version int    `msgpack:"version"`
}

func decodeEnvelope(data []byte) (*envelope, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorrupt)
	}

	// Other versions may carry fields this one does not know, so the
	// header is read leniently before the strict decode.
	var h header
	if err := msgpack.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrUnsupportedVersion, h.Version, Version)
	}

	var env envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &env, nil
}

func decodeConfig(data []byte) (transform.Config, error) {
	env, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	kind, err := transform.ParseKind(env.Kind)
	if err != nil {
		return nil, err
	}

	if kind == transform.KindSequential {
		var steps [][]byte
		if err := strictUnmarshal(env.Config, &steps); err != nil {
			return nil, fmt.Errorf("%w: %s steps: %w", ErrConfigDecode, kind, err)
		}
		cfg := transform.SequentialConfig{Steps: make([]transform.Config, len(steps))}
		for i, b := range steps {
			step, err := decodeConfig(b)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			cfg.Steps[i] = step
		}
		return cfg, nil
	}

	ptr, err := defaultConfigPtr(kind)
	if err != nil {
		return nil, err
	}
	if err := strictUnmarshal(env.Config, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigDecode, kind, err)
	}
	return ptr.Elem().Interface().(transform.Config), nil
}

// defaultConfigPtr returns a pointer to a copy of kind's default config,
// ready to be decoded into so that absent fields keep their defaults.
func defaultConfigPtr(kind transform.Kind) (reflect.Value, error) {
	def, err := transform.DefaultConfig(kind)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(reflect.TypeOf(def))
	ptr.Elem().Set(reflect.ValueOf(def))
	return ptr, nil
}

func strictUnmarshal(data []byte, v any) error {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if r.Len() > 0 {
		return fmt.Errorf("%d trailing bytes", r.Len())
	}
	return nil
}
