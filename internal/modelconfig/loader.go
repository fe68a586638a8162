package modelconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads one model YAML and returns it with the raw bytes.
// KnownFields(true) fails fast on typos and unknown keys, so a model
// file can never silently carry dead configuration.
func Load(path string) (*Model, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var m Model
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, nil, err
	}

	if err := Validate(&m); err != nil {
		return nil, data, err
	}

	return &m, data, nil
}

// LoadDir reads every .yaml/.yml model in dir, sorted by filename.
// A single invalid file fails the whole load; a half-usable model set
// is worse than none.
func LoadDir(dir string) ([]*Model, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no model files in %s", dir)
	}

	models := make([]*Model, 0, len(paths))
	seen := make(map[string]string)
	for _, p := range paths {
		m, _, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, ok := seen[m.Meta.ModelID]; ok {
			return nil, fmt.Errorf("%s: model_id %q already defined in %s", p, m.Meta.ModelID, prev)
		}
		seen[m.Meta.ModelID] = p
		models = append(models, m)
	}

	return models, nil
}

// Find returns the model with the given id, or nil.
func Find(models []*Model, id string) *Model {
	for _, m := range models {
		if m.Meta.ModelID == id {
			return m
		}
	}
	return nil
}

// Hash generates a SHA256 over the canonical JSON form of the model.
// Structs marshal in field order, so the hash is reproducible and two
// semantically identical files hash alike regardless of YAML layout.
func Hash(m *Model) (string, error) {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
