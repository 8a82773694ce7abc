package cli

import (
	"path/filepath"
	"strings"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/internal/compiler"
	"github.com/aretw0/turning/internal/dto"
)

// Model is a parsed YAML model.
// Its handlers are no-ops: runs exercise the declarations, not a system.
type Model struct {
	// Name defaults to the file name without its extension.
	Name string
	decl *dto.Model
}

// ReadModel parses the model file at path.
func ReadModel(path string) (*Model, error) {
	m, err := compiler.NewParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	name := m.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Model{Name: name, decl: m}, nil
}

// Compile declares the model on a new Turning instance.
func (m *Model) Compile(opts ...turning.Option[compiler.Context]) *turning.Turning[compiler.Context] {
	t := turning.New(opts...)
	compiler.Compile(m.decl, t.Builder)
	return t
}
