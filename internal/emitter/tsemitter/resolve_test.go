package tsemitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	genspec "github.com/STNeto1/openapi-gen/internal/spec"
)

func ref(name string) *genspec.Property {
	r := genspec.DefinitionsPrefix + name
	return &genspec.Property{Reference: r, Shape: genspec.Shape{Kind: genspec.ShapeReference, Name: r}}
}

func boolPtr(b bool) *bool { return &b }

func newTestResolver(defs ...string) *Resolver {
	doc := &genspec.Document{Definitions: map[string]*genspec.Definition{}}
	for _, d := range defs {
		doc.Definitions[d] = &genspec.Definition{Kind: genspec.ObjectDefinition}
	}
	return NewResolver(doc, Options{})
}

func TestResolver_Responses(t *testing.T) {
	t.Parallel()
	r := newTestResolver("User", "Error")
	responses := map[string]*genspec.Response{
		"200":     {StatusCode: "200", Schema: ref("User")},
		"201":     {StatusCode: "201", Schema: ref("User")},
		"404":     {StatusCode: "404", Schema: ref("Error")},
		"default": {StatusCode: "default", Schema: ref("Error")},
	}
	assert.Equal(t, "Promise<User>", r.Responses("#/r", responses, SuccessClass))
	assert.Equal(t, "Promise<Error>", r.Responses("#/r", responses, ErrorClass))
	assert.Empty(t, r.Diagnostics())
}

func TestResolver_ResponsesEmptyClasses(t *testing.T) {
	t.Parallel()
	r := newTestResolver()
	responses := map[string]*genspec.Response{"302": {StatusCode: "302"}}
	assert.Equal(t, BottomType, r.Responses("#/r", responses, ErrorClass))
	assert.Equal(t, UnknownResult, r.Responses("#/r", responses, SuccessClass))
	assert.Equal(t, BottomType, r.Responses("#/r", nil, ErrorClass))
}

func TestResolver_ResponseOrderAndUnknown(t *testing.T) {
	t.Parallel()
	r := newTestResolver("A", "B")
	responses := map[string]*genspec.Response{
		"202": {StatusCode: "202", Schema: ref("A")},
		"200": {StatusCode: "200", Schema: ref("B")},
		"204": {StatusCode: "204"},
	}
	assert.Equal(t, "Promise<B> | Promise<A> | Promise<unknown>", r.Responses("#/r", responses, SuccessClass))
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, genspec.MissingSchema, r.Diagnostics()[0].Code)
	assert.Equal(t, "#/r/204", r.Diagnostics()[0].Pointer)
}

func TestResolver_Parameter(t *testing.T) {
	t.Parallel()
	str := &genspec.Property{PrimitiveType: genspec.StringType, RawType: "string",
		Shape: genspec.Shape{Kind: genspec.ShapePrimitive, Primitive: genspec.StringType}}
	param := func(required *bool) *genspec.Parameter {
		return &genspec.Parameter{Name: "q", Location: genspec.InQuery, RawType: "string", Required: required, Value: str}
	}

	r := newTestResolver()
	assert.Equal(t, "string", r.Parameter("#/p", param(boolPtr(true))))
	assert.Equal(t, "string | null", r.Parameter("#/p", param(boolPtr(false))))
	assert.Equal(t, "string | null | undefined", r.Parameter("#/p", param(nil)))
	assert.Equal(t, BottomType, r.Parameter("#/p", &genspec.Parameter{Name: "q", Required: boolPtr(false)}))

	uniform := NewResolver(nil, Options{UniformOptional: true})
	assert.Equal(t, "string | null", uniform.Parameter("#/p", param(nil)))
	assert.Equal(t, "string", uniform.Parameter("#/p", param(boolPtr(true))))
}

func TestResolver_ArrayOfUnion(t *testing.T) {
	t.Parallel()
	r := newTestResolver()
	enum := &genspec.Property{Shape: genspec.Shape{Kind: genspec.ShapeEnum, Enum: []string{"a", "b"}}}
	arr := &genspec.Property{Shape: genspec.Shape{Kind: genspec.ShapeArray, Elem: enum}}
	assert.Equal(t, "('a' | 'b')[]", r.Property("#/x", arr))
}

func TestResolver_EmptyEnumIsBottom(t *testing.T) {
	t.Parallel()
	r := newTestResolver()
	assert.Equal(t, BottomType, r.Definition("E", &genspec.Definition{Kind: genspec.EnumDefinition}))
	assert.Equal(t, BottomType, r.Property("#/x", nil))
}

func TestResolver_EnumLiteralEscaping(t *testing.T) {
	t.Parallel()
	r := newTestResolver()
	def := &genspec.Definition{Kind: genspec.EnumDefinition, EnumValues: []string{"a\rb", "it's", `c\d`, "e\nf", "g\u2028h"}}
	got := r.Definition("E", def)
	assert.Equal(t, `'a\rb' | 'it\'s' | 'c\\d' | 'e\nf' | 'g\u2028h'`, got)
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, "\n")
}

func TestResolver_DanglingReference(t *testing.T) {
	t.Parallel()
	r := newTestResolver("User")
	assert.Equal(t, "Ghost", r.Property("#/x", ref("Ghost")))
	assert.Equal(t, "User", r.Property("#/y", ref("User")))
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, genspec.DanglingReference, r.Diagnostics()[0].Code)

	// Without a document every reference is trusted.
	free := NewResolver(nil, Options{})
	assert.Equal(t, "Ghost", free.Property("#/x", ref("Ghost")))
	assert.Empty(t, free.Diagnostics())
}
