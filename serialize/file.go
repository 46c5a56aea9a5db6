// SPDX-License-Identifier: EPL-2.0

package serialize

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audxf/transform"
)

// Save exports t and writes the encoding to path.
func Save(t transform.Transform, path string) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"kind": t.Kind(),
		"path": path,
	}).Debug("transform saved")
	return nil
}

// Load reads an encoding written by Save and rebuilds the transform.
func Load(path string) (transform.Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
