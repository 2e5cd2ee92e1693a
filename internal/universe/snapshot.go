package universe

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Snapshot is the declarative on-disk form of a universe. Snapshots are
// produced by indexer exports or written by hand for architectural fixtures.
type Snapshot struct {
	Version  int               `yaml:"version"`
	Packages []SnapshotPackage `yaml:"packages,omitempty"`
	Types    []SnapshotType    `yaml:"types"`
}

// SnapshotPackage mirrors PackageDescriptor
type SnapshotPackage struct {
	Name        string       `yaml:"name"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// SnapshotType mirrors Type. Visibility defaults to public when omitted,
// which keeps hand-written fixtures short.
type SnapshotType struct {
	QualifiedName  string        `yaml:"qualifiedName"`
	Visibility     string        `yaml:"visibility,omitempty"`
	Annotations    []Annotation  `yaml:"annotations,omitempty"`
	Supertypes     []string      `yaml:"supertypes,omitempty"`
	TypeBounds     []string      `yaml:"typeBounds,omitempty"`
	Fields         []Field       `yaml:"fields,omitempty"`
	Constructors   []Constructor `yaml:"constructors,omitempty"`
	Methods        []Method      `yaml:"methods,omitempty"`
	Instantiations []CallSite    `yaml:"instantiations,omitempty"`
}

// ParseSnapshot parses snapshot YAML into a Universe
func ParseSnapshot(data []byte) (*Universe, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse universe snapshot: %w", err)
	}
	if snap.Version > 1 {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	b := NewBuilder()
	for _, sp := range snap.Packages {
		if sp.Name == "" {
			return nil, fmt.Errorf("snapshot package missing required 'name' field")
		}
		b.AddPackage(&PackageDescriptor{
			Name:        sp.Name,
			Annotations: sp.Annotations,
		})
	}
	for _, st := range snap.Types {
		if st.QualifiedName == "" {
			return nil, fmt.Errorf("snapshot type missing required 'qualifiedName' field")
		}
		vis := Visibility(st.Visibility)
		if vis == "" {
			vis = VisibilityPublic
		}
		b.AddType(&Type{
			QualifiedName:  st.QualifiedName,
			Visibility:     vis,
			Annotations:    st.Annotations,
			Supertypes:     st.Supertypes,
			TypeBounds:     st.TypeBounds,
			Fields:         st.Fields,
			Constructors:   st.Constructors,
			Methods:        st.Methods,
			Instantiations: st.Instantiations,
		})
	}
	return b.Build(), nil
}

// LoadSnapshot reads a snapshot file and builds a Universe. Files ending in
// .zst are transparently decompressed.
func LoadSnapshot(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe snapshot %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		reader = dec
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe snapshot %s: %w", path, err)
	}
	return ParseSnapshot(data)
}

// WriteSnapshot serializes a snapshot to path. Paths ending in .zst are
// compressed.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal universe snapshot: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create universe snapshot %s: %w", path, err)
	}
	defer f.Close()

	var writer io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer enc.Close()
		writer = enc
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write universe snapshot %s: %w", path, err)
	}
	return nil
}
