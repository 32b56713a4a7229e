package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectLookupArgs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"teamtz"}, []string{"teamtz"}},
		{[]string{"teamtz", "@Ana"}, []string{"teamtz", "show", "Ana"}},
		{[]string{"teamtz", "--dir", "/tmp/x", "@Ana", "--pretty"}, []string{"teamtz", "--dir", "/tmp/x", "show", "Ana", "--pretty"}},
		{[]string{"teamtz", "--format=text", "@Bo"}, []string{"teamtz", "--format=text", "show", "Bo"}},
		{[]string{"teamtz", "--", "@Cy"}, []string{"teamtz", "--", "show", "Cy"}},
		{[]string{"teamtz", "list", "@Ana"}, []string{"teamtz", "list", "@Ana"}},
		{[]string{"teamtz", "@"}, []string{"teamtz", "@"}},
	}
	for _, tc := range cases {
		if got := rewriteDirectLookupArgs(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("rewrite(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
