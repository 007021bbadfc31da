package defs

// Definition is a preprocessor symbol whose Value is a ready-to-embed string
// literal. Raw keeps the value as it appeared in the definition file.
type Definition struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Raw   string `json:"-" yaml:"-"`
}

// New builds a Definition from a raw value.
func New(name, raw string) Definition {
	return Definition{Name: name, Value: Stringify(raw), Raw: raw}
}

// Stringify wraps s in backslash-escaped double quotes. Embedded quotes are
// not escaped.
func Stringify(s string) string {
	return `\"` + s + `\"`
}

// BuildContext is the host build configuration that definitions are appended to.
type BuildContext interface {
	AppendDefinitions(defs ...Definition)
}

// List is an ordered definitions list. Duplicate names are kept.
type List []Definition

func (l *List) AppendDefinitions(defs ...Definition) {
	*l = append(*l, defs...)
}

func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for _, d := range l {
		names = append(names, d.Name)
	}
	return names
}

var _ BuildContext = (*List)(nil)
