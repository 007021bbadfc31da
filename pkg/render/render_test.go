package render

import (
	"bytes"
	"encoding/json"
	osexec "os/exec"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/sameehj/envdefs/pkg/defs"
	"gopkg.in/yaml.v3"
)

func sample() defs.List {
	return defs.List{
		defs.New("FOO", "bar"),
		defs.New("SSID", "my network"),
		defs.New("BAZ", ""),
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"flags", "header", "json", "yaml", " JSON "} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", name, err)
		}
	}

	_, err := ParseFormat("cmake")
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "flags, header, json, yaml") {
		t.Fatalf("expected valid formats in error, got %v", err)
	}
}

func TestFlags(t *testing.T) {
	t.Parallel()

	got := Flags(sample())
	want := `-DFOO=\"bar\" '-DSSID="my network"' -DBAZ=\"\"`
	if got != want {
		t.Fatalf("Flags() = %q, want %q", got, want)
	}

	got = Flag(defs.New("SSID", "Bob's net"))
	want = `'-DSSID="Bob'\''s net"'`
	if got != want {
		t.Fatalf("Flag() = %q, want %q", got, want)
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatFlags, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "\n" {
		t.Fatalf("expected empty flag line, got %q", buf.String())
	}
}

func TestFlagsSplitByShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	t.Parallel()

	list := defs.List{
		defs.New("SSID", "Bob's net"),
		defs.New("B", "1"),
		defs.New("PASS", `p$ss;"x"`),
		defs.New("URL", "http://host:80/a"),
		defs.New("EMPTY", ""),
	}
	out, err := osexec.Command("sh", "-c", "set -- "+Flags(list)+`; printf '%s\n' "$@"`).Output()
	if err != nil {
		t.Fatalf("sh rejected %q: %v", Flags(list), err)
	}

	got := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	want := []string{
		`-DSSID="Bob's net"`,
		`-DB="1"`,
		`-DPASS="p$ss;"x""`,
		`-DURL="http://host:80/a"`,
		`-DEMPTY=""`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("shell words = %q, want %q", got, want)
	}
}

func TestHeader(t *testing.T) {
	t.Parallel()

	list := append(sample(), defs.New("FOO", "override"))
	var buf bytes.Buffer
	if err := Write(&buf, FormatHeader, list); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"#ifndef ENVDEFS_GENERATED_H\n#define ENVDEFS_GENERATED_H\n",
		"#define FOO \"bar\"\n",
		"#define SSID \"my network\"\n",
		"#define BAZ \"\"\n",
		"#undef FOO\n#define FOO \"override\"\n",
		"#endif // ENVDEFS_GENERATED_H\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("header missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "#undef") != 1 {
		t.Fatalf("expected a single #undef:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sample()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if len(decoded) != 3 || decoded[0]["name"] != "FOO" || decoded[0]["value"] != `\"bar\"` {
		t.Fatalf("unexpected json payload: %#v", decoded)
	}
	if _, ok := decoded[0]["Raw"]; ok {
		t.Fatalf("raw value must not be serialised")
	}

	buf.Reset()
	if err := Write(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sample()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml %q: %v", buf.String(), err)
	}
	if len(decoded) != 3 || decoded[1]["name"] != "SSID" || decoded[1]["value"] != `\"my network\"` {
		t.Fatalf("unexpected yaml payload: %#v", decoded)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, Format("ini"), sample()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
