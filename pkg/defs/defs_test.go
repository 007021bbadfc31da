package defs

import (
	"reflect"
	"testing"
)

func TestStringify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bar":       `\"bar\"`,
		"":          `\"\"`,
		"a=b":       `\"a=b\"`,
		"value one": `\"value one\"`,
		`say "hi"`:  `\"say "hi"\"`,
	}
	for input, expected := range cases {
		if got := Stringify(input); got != expected {
			t.Errorf("Stringify(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestListAppendKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	var list List
	var ctx BuildContext = &list
	ctx.AppendDefinitions(New("FOO", "bar"), New("BAZ", ""))
	ctx.AppendDefinitions(New("FOO", "again"))

	if got := list.Names(); !reflect.DeepEqual(got, []string{"FOO", "BAZ", "FOO"}) {
		t.Fatalf("names = %v", got)
	}
	if list[1].Value != `\"\"` || list[1].Raw != "" {
		t.Fatalf("unexpected BAZ definition: %#v", list[1])
	}
	if list[2].Raw != "again" {
		t.Fatalf("expected redefinition appended last, got %#v", list[2])
	}
}
