package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sameehj/envdefs/pkg/defs"
	"gopkg.in/yaml.v3"
)

// Format selects how a definitions list is written for the host build tool.
type Format string

const (
	FormatFlags  Format = "flags"
	FormatHeader Format = "header"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

const HeaderGuard = "ENVDEFS_GENERATED_H"

var formats = map[Format]func(io.Writer, defs.List) error{
	FormatFlags:  writeFlags,
	FormatHeader: writeHeader,
	FormatJSON:   writeJSON,
	FormatYAML:   writeYAML,
}

func Formats() []string {
	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("unknown format %q (valid: %s)", name, strings.Join(Formats(), ", "))
	}
	return f, nil
}

func Write(w io.Writer, f Format, list defs.List) error {
	fn, ok := formats[f]
	if !ok {
		return fmt.Errorf("unknown format %q", f)
	}
	return fn(w, list)
}

// Flag returns the compiler flag for d as one shell word. Both forms split to
// -DNAME="RAW": plain words use \" escapes, anything else is single-quoted.
func Flag(d defs.Definition) string {
	if isShellSafe(d.Name) && isShellSafe(d.Raw) {
		return "-D" + d.Name + "=" + d.Value
	}
	word := "-D" + d.Name + `="` + d.Raw + `"`
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-+=.,:/@%", r):
		default:
			return false
		}
	}
	return true
}

func Flags(list defs.List) string {
	flags := make([]string, 0, len(list))
	for _, d := range list {
		flags = append(flags, Flag(d))
	}
	return strings.Join(flags, " ")
}

func writeFlags(w io.Writer, list defs.List) error {
	_, err := fmt.Fprintln(w, Flags(list))
	return err
}

func writeHeader(w io.Writer, list defs.List) error {
	var b strings.Builder
	b.WriteString("// Code generated by envdefs. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", HeaderGuard, HeaderGuard)

	seen := make(map[string]bool, len(list))
	for _, d := range list {
		if seen[d.Name] {
			fmt.Fprintf(&b, "#undef %s\n", d.Name)
		}
		seen[d.Name] = true
		fmt.Fprintf(&b, "#define %s \"%s\"\n", d.Name, d.Raw)
	}

	fmt.Fprintf(&b, "\n#endif // %s\n", HeaderGuard)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, list defs.List) error {
	if list == nil {
		list = defs.List{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, list defs.List) error {
	if list == nil {
		list = defs.List{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
