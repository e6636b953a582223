package introspect

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/fbstubs/errors"
)

// SnapshotClass is one class entry of a module snapshot.
type SnapshotClass struct {
	Name    string   `yaml:"name"`
	Bases   []string `yaml:"bases,omitempty"`
	Members []Member `yaml:"members,omitempty"`
}

// SnapshotFile is the on-disk layout of a module snapshot. JSON dumps decode
// through the same tags.
type SnapshotFile struct {
	Module    string          `yaml:"module"`
	Version   string          `yaml:"version"`
	Functions []Callable      `yaml:"functions,omitempty"`
	Classes   []SnapshotClass `yaml:"classes,omitempty"`
}

// Snapshot is an Inspector over a recorded module dump.
type Snapshot struct {
	file    SnapshotFile
	classes map[string]*SnapshotClass
}

// LoadSnapshot reads a YAML or JSON snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read module snapshot %s", path)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, errors.Wrapf(err, "module snapshot %s", path)
	}
	return snap, nil
}

// ParseSnapshot decodes a YAML or JSON snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var file SnapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return NewSnapshot(file)
}

// NewSnapshot validates file and indexes its classes.
func NewSnapshot(file SnapshotFile) (*Snapshot, error) {
	if file.Module == "" {
		return nil, errors.WithHint(
			errors.New("snapshot has no module name"),
			"the dumper writes a top-level 'module' key",
		)
	}

	s := &Snapshot{file: file, classes: make(map[string]*SnapshotClass, len(file.Classes))}
	for i := range file.Classes {
		c := &s.file.Classes[i]
		if c.Name == "" {
			return nil, errors.Newf("snapshot class #%d has no name", i+1)
		}
		if _, dup := s.classes[c.Name]; dup {
			return nil, errors.Newf("snapshot lists class %q twice", c.Name)
		}
		s.classes[c.Name] = c
	}
	for i, f := range file.Functions {
		if f.Name == "" {
			return nil, errors.Newf("snapshot function #%d has no name", i+1)
		}
	}
	return s, nil
}

func (s *Snapshot) Module() string  { return s.file.Module }
func (s *Snapshot) Version() string { return s.file.Version }

func (s *Snapshot) Functions() ([]Callable, error) {
	return s.file.Functions, nil
}

func (s *Snapshot) Classes() ([]string, error) {
	names := make([]string, 0, len(s.file.Classes))
	for _, c := range s.file.Classes {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *Snapshot) class(name string) (*SnapshotClass, error) {
	c, ok := s.classes[name]
	if !ok {
		return nil, errors.NewMissingSymbolError(s.file.Module + "." + name)
	}
	return c, nil
}

func (s *Snapshot) Bases(class string) ([]string, error) {
	c, err := s.class(class)
	if err != nil {
		return nil, err
	}
	return c.Bases, nil
}

func (s *Snapshot) Members(class string) ([]Member, error) {
	c, err := s.class(class)
	if err != nil {
		return nil, err
	}
	for i, m := range c.Members {
		if m.Name == "" {
			return nil, errors.Newf("class %s: member #%d has no name", class, i+1)
		}
	}
	return c.Members, nil
}

func (s *Snapshot) IsStatic(class, member string) (bool, error) {
	c, err := s.class(class)
	if err != nil {
		return false, err
	}
	for _, m := range c.Members {
		if m.Name == member {
			return m.Descriptor == "staticmethod", nil
		}
	}
	return false, errors.NewMissingSymbolError(s.file.Module + "." + class + "." + member)
}
