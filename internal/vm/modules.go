package vm

import (
	"strings"

	"github.com/chonkie-inc/littrs/internal/values"
)

// importModule resolves OpImportName's operand against the module
// registry populated by RegisterModule, per spec.md §4.5. A dotted name
// (`import os.path`) falls back to its top-level segment, since this
// subset has no package hierarchy of its own — registered modules are
// flat, host-provided namespaces.
func (v *VM) importModule(name string) (*values.Module, error) {
	if m, ok := v.modules[name]; ok {
		return m, nil
	}
	if top := strings.SplitN(name, ".", 2)[0]; top != name {
		if m, ok := v.modules[top]; ok {
			return m, nil
		}
	}
	return nil, values.NewImportError("no module named '%s'", name)
}
