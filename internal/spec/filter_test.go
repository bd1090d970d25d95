package spec

import (
	"testing"
)

const filterDoc = `{
	"definitions": {"Pet": {"type": "object"}},
	"paths": {
		"/pets": {
			"get": {"tags": ["read", "animal"]},
			"post": {"tags": ["write", "animal"]}
		},
		"/admin/stats": {
			"get": {"tags": ["admin"]}
		},
		"/health": {
			"get": {}
		}
	}
}`

func operationKeys(doc *Document) map[string]bool {
	out := map[string]bool{}
	for path, item := range doc.Paths {
		for _, m := range Methods {
			if item.Operation(m) != nil {
				out[string(m)+" "+path] = true
			}
		}
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		opts []FilterOption
		want []string
	}{
		{"none", nil, []string{"get /pets", "post /pets", "get /admin/stats", "get /health"}},
		{"include tag", []FilterOption{WithIncludeTags([]string{"animal"})}, []string{"get /pets", "post /pets"}},
		{"exclude tag", []FilterOption{WithExcludeTags([]string{"admin", "write"})}, []string{"get /pets", "get /health"}},
		{"include and exclude", []FilterOption{WithIncludeTags([]string{"animal"}), WithExcludeTags([]string{"write"})}, []string{"get /pets"}},
		{"methods", []FilterOption{WithMethods([]HttpMethod{"POST"})}, []string{"post /pets"}},
		{"path pattern", []FilterOption{WithPathPatterns([]string{"^/admin"})}, []string{"get /admin/stats"}},
		{"invalid pattern", []FilterOption{WithPathPatterns([]string{"("})}, nil},
		{"blank values ignored", []FilterOption{WithIncludeTags([]string{" "}), WithPathPatterns([]string{""})}, []string{"get /pets", "post /pets", "get /admin/stats", "get /health"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc, _ := mustParse(t, filterDoc)
			got := operationKeys(Filter(doc, tc.opts...))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for _, k := range tc.want {
				if !got[k] {
					t.Fatalf("missing %q in %v", k, got)
				}
			}
		})
	}
}

func TestFilter_DropsEmptyPathsKeepsDefinitions(t *testing.T) {
	t.Parallel()
	doc, _ := mustParse(t, filterDoc)
	out := Filter(doc, WithMethods([]HttpMethod{POST}))
	if _, ok := out.Paths["/health"]; ok {
		t.Fatalf("expected /health to be dropped")
	}
	if _, ok := out.Definitions["Pet"]; !ok {
		t.Fatalf("expected definitions to be kept")
	}
	if doc.Paths["/health"] == nil {
		t.Fatalf("expected input document untouched")
	}
}

func TestFilter_NoOptionsReturnsInput(t *testing.T) {
	t.Parallel()
	doc, _ := mustParse(t, filterDoc)
	if Filter(doc) != doc {
		t.Fatalf("expected the same document back")
	}
	if Filter(nil, WithMethods([]HttpMethod{GET})) != nil {
		t.Fatalf("expected nil for nil input")
	}
}
