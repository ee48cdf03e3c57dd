package attrs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func isND(name string) bool { return name == "ND" }

func TestExtendStart(t *testing.T) {
	tests := []struct {
		name string
		// src marks the nominal declaration start with '|' and the expected
		// extended start with '^'. When '^' is absent the start is unchanged.
		src string
	}{
		{name: "nothing before", src: "int a;\n|int b;"},
		{name: "c++11 attribute", src: "int a;\n^[[nodiscard]] |int f();"},
		{name: "nested brackets", src: "^[[gnu::aligned(8), deprecated(\"a[0]\")]]\n|int x;"},
		{name: "several groups", src: "^[[a]] [[b]]\t|int x;"},
		{name: "alignas", src: "struct S { ^alignas(16) |float v[4]; };"},
		{name: "alignas then attribute", src: "^alignas(8) [[maybe_unused]] |char c;"},
		{name: "declspec", src: "^__declspec(dllexport) |void f();"},
		{name: "gnu", src: "^__attribute__((visibility(\"default\"))) |void f();"},
		{name: "plain call is not an attribute", src: "FOO(x)\n|int y;"},
		{name: "single bracket is not an attribute", src: "int a[2];|int b;"},
		{name: "stops at statement end", src: "f();|int z;"},
		{name: "skips directive lines", src: "#define ND [[nodiscard]]\n|ND int f();"},
		{name: "attribute macro", src: "#define ND [[nodiscard]]\n^ND |int f();"},
		{name: "attribute macro then group", src: "int a;\n^ND [[maybe_unused]] |int b;"},
		{name: "other identifier", src: "int a;\nFOO |int b;"},
		{name: "macro name on directive line", src: "#define ND\n|int f();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src
			want := strings.IndexByte(src, '^')
			if want >= 0 {
				src = src[:want] + src[want+1:]
			}
			start := strings.IndexByte(src, '|')
			src = src[:start] + src[start+1:]
			if want < 0 {
				want = start
			}
			assert.Equal(t, want, ExtendStart([]byte(src), start, isND))
		})
	}
}

func TestExtendStartClampsOutOfRange(t *testing.T) {
	src := []byte("[[a]]")
	assert.Equal(t, 0, ExtendStart(src, 100, nil))
	assert.Equal(t, 0, ExtendStart(nil, 0, nil))
}

func TestExtendStartWithoutMacros(t *testing.T) {
	src := []byte("ND int f();")
	assert.Equal(t, 3, ExtendStart(src, 3, nil))
}
