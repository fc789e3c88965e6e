package source

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"text/template"

	"github.com/invopop/jsonschema"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/filesystem"
)

// Schema describes the source file format.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.DoNotReference = true
	reflector.Namer = func(t reflect.Type) string {
		return t.Name()
	}

	return reflector.Reflect(&Source{})
}

var scaffold = template.Must(template.New("source").Parse(constant.SourceTemplate))

// Scaffold writes s as an annotated YAML source file.
func (s *Source) Scaffold(w io.Writer) error {
	return scaffold.Execute(w, s)
}

// Save scaffolds s into path, refusing to overwrite unless force is set.
func (s *Source) Save(path string, force bool) error {
	if !force {
		if exists, _ := filesystem.API().Exists(path); exists {
			return fmt.Errorf("%s already exists", path)
		}
	}

	var buf bytes.Buffer
	if err := s.Scaffold(&buf); err != nil {
		return fmt.Errorf("render source: %w", err)
	}

	return filesystem.API().WriteFile(path, buf.Bytes(), 0o644)
}
