// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audxf/buffer"
)

// SequentialConfig lists the configs of the composed steps in order.
type SequentialConfig struct {
	Steps []Config `msgpack:"-" yaml:"-" json:"-"`
}

func (SequentialConfig) Kind() Kind { return KindSequential }

func (c SequentialConfig) Validate() error {
	for i, step := range c.Steps {
		if step == nil {
			return configError(KindSequential, "step %d has no config", i)
		}
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// Sequential applies its steps in order, feeding each output to the next
// step. An empty Sequential returns a copy of its input.
type Sequential struct {
	steps []Transform
}

func newSequential(cfg SequentialConfig) (*Sequential, error) {
	steps := make([]Transform, len(cfg.Steps))
	for i, c := range cfg.Steps {
		if c == nil {
			return nil, configError(KindSequential, "step %d has no config", i)
		}
		t, err := New(c)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = t
	}
	return &Sequential{steps: steps}, nil
}

// NewSequential composes already built transforms.
func NewSequential(steps ...Transform) *Sequential {
	return &Sequential{steps: slices.Clone(steps)}
}

func (s *Sequential) Kind() Kind { return KindSequential }

func (s *Sequential) Config() Config {
	cfg := SequentialConfig{Steps: make([]Config, len(s.steps))}
	for i, t := range s.steps {
		cfg.Steps[i] = t.Config()
	}
	return cfg
}

// Steps returns the composed transforms.
func (s *Sequential) Steps() []Transform { return slices.Clone(s.steps) }

func (s *Sequential) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	if x == nil {
		return nil, inputError(KindSequential, "nil buffer")
	}
	out := x.Clone()
	for i, t := range s.steps {
		next, err := t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		logrus.WithFields(logrus.Fields{
			"step":  i,
			"kind":  t.Kind(),
			"in":    out.Shape(),
			"out":   next.Shape(),
			"dtype": next.DType().String(),
		}).Debug("sequential step applied")
		out = next
	}
	return out, nil
}
