// SPDX-License-Identifier: EPL-2.0

package serialize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ik5/audxf/transform"
)

// ParsePipeline builds a transform from a YAML pipeline. Every document
// holds a kind and that kind's fields; omitted fields keep their defaults
// and unknown fields are rejected. A single document gives that transform,
// several give a Sequential of them in order. A Sequential document lists
// its step documents under steps.
//
//	kind: Spectrogram
//	n_fft: 512
//	---
//	kind: AmplitudeToDB
//	top_db: 80
func ParsePipeline(data []byte) (transform.Transform, error) {
	cfg, err := ParsePipelineConfig(data)
	if err != nil {
		return nil, err
	}
	return transform.New(cfg)
}

// ParsePipelineConfig is ParsePipeline without building the transform.
func ParsePipelineConfig(data []byte) (transform.Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var steps []transform.Config
	for {
		var raw map[string]any
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: parse YAML: %w", ErrConfigDecode, err)
		}
		if raw == nil {
			continue
		}
		cfg, err := configFromDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(steps), err)
		}
		steps = append(steps, cfg)
	}

	switch len(steps) {
	case 0:
		return nil, fmt.Errorf("%w: pipeline has no documents", ErrConfigDecode)
	case 1:
		return steps[0], nil
	}
	return transform.SequentialConfig{Steps: steps}, nil
}

// LoadPipelineFile reads and parses a YAML pipeline file. Use "-" for
// stdin.
func LoadPipelineFile(path string) (transform.Transform, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func configFromDocument(raw map[string]any) (transform.Config, error) {
	name, _ := raw["kind"].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: document missing 'kind' field", ErrConfigDecode)
	}
	kind, err := transform.ParseKind(name)
	if err != nil {
		return nil, err
	}
	fields := maps.Clone(raw)
	delete(fields, "kind")

	if kind == transform.KindSequential {
		return sequentialFromDocument(fields)
	}

	ptr, err := defaultConfigPtr(kind)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		b, err := yaml.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigDecode, kind, err)
		}
		if err := yaml.UnmarshalWithOptions(b, ptr.Interface(), yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigDecode, kind, err)
		}
	}
	return ptr.Elem().Interface().(transform.Config), nil
}

func sequentialFromDocument(fields map[string]any) (transform.Config, error) {
	list := fields["steps"]
	delete(fields, "steps")
	for name := range fields {
		return nil, fmt.Errorf("%w: %s: unknown field %q", ErrConfigDecode, transform.KindSequential, name)
	}

	var items []any
	if list != nil {
		var ok bool
		if items, ok = list.([]any); !ok {
			return nil, fmt.Errorf("%w: %s: steps must be a list of documents", ErrConfigDecode, transform.KindSequential)
		}
	}
	cfg := transform.SequentialConfig{Steps: make([]transform.Config, len(items))}
	for i, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: step %d is not a document", ErrConfigDecode, transform.KindSequential, i)
		}
		step, err := configFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		cfg.Steps[i] = step
	}
	return cfg, nil
}

// MarshalYAML writes t as a YAML pipeline that ParsePipeline reads back
// into an equivalent transform. A Sequential of two or more steps becomes
// one document per step.
func MarshalYAML(t transform.Transform) ([]byte, error) {
	cfg := t.Config()
	if seq, ok := cfg.(transform.SequentialConfig); ok && len(seq.Steps) > 1 {
		var buf bytes.Buffer
		for i, step := range seq.Steps {
			b, err := marshalDocument(step)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			if i > 0 {
				buf.WriteString("---\n")
			}
			buf.Write(b)
		}
		return buf.Bytes(), nil
	}
	return marshalDocument(cfg)
}

func marshalDocument(cfg transform.Config) ([]byte, error) {
	doc, err := yamlDocument(cfg)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// yamlDocument lays cfg out as an ordered map: kind first, then the fields
// in declaration order.
func yamlDocument(cfg transform.Config) (yaml.MapSlice, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", transform.ErrInvalidConfig)
	}
	doc := yaml.MapSlice{{Key: "kind", Value: string(cfg.Kind())}}
	if seq, ok := cfg.(transform.SequentialConfig); ok {
		steps := make([]any, len(seq.Steps))
		for i, step := range seq.Steps {
			d, err := yamlDocument(step)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			steps[i] = d
		}
		return append(doc, yaml.MapItem{Key: "steps", Value: steps}), nil
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode %s config: %w", cfg.Kind(), err)
	}
	var fields yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(b, &fields, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("encode %s config: %w", cfg.Kind(), err)
	}
	return append(doc, fields...), nil
}
