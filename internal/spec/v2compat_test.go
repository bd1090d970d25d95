package spec

import (
	"strings"
	"testing"
)

func TestV2Compat_MultipleBodyMerged(t *testing.T) {
	t.Parallel()
	// Two body params (invalid v2) are merged into a single inline object body.
	doc, diags := mustParse(t, `{"paths": {"/x": {"post": {
		"parameters": [
			{"in": "query", "name": "q", "type": "string"},
			{"in": "body", "name": "a", "required": true, "schema": {"type": "string"}},
			{"in": "body", "name": "b", "schema": {"type": "integer"}},
			{"in": "path", "name": "id", "type": "integer", "required": true}
		]
	}}}}`)

	op := doc.Paths["/x"].Post
	if len(op.Parameters) != 3 {
		t.Fatalf("expected 3 parameters after merge, got %+v", op.Parameters)
	}
	body := op.Parameters[1]
	if body.Name != "body" || body.Location != InBody {
		t.Fatalf("expected merged body at the first body position, got %+v", body)
	}
	if body.Required == nil || !*body.Required {
		t.Fatalf("expected merged body to be required")
	}
	schema := body.BodySchema
	if schema == nil || schema.Shape.Kind != ShapeObject {
		t.Fatalf("expected inline object body, got %+v", schema)
	}
	if schema.Properties["a"].PrimitiveType != StringType || schema.Properties["b"].PrimitiveType != IntegerType {
		t.Fatalf("unexpected merged properties %+v", schema.Properties)
	}
	if op.Parameters[2].Name != "id" {
		t.Fatalf("expected parameter order preserved, got %+v", op.Parameters)
	}

	if len(diags) != 1 || diags[0].Code != MergedBodyParameters {
		t.Fatalf("expected one MergedBodyParameters diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Message, "a, b") {
		t.Fatalf("expected merged names in message, got %q", diags[0].Message)
	}
}

func TestV2Compat_BodyWithoutSchema(t *testing.T) {
	t.Parallel()
	doc, _ := mustParse(t, `{"paths": {"/x": {"put": {
		"parameters": [
			{"in": "body", "name": "count", "type": "integer"},
			{"in": "body", "name": "note"}
		]
	}}}}`)
	schema := doc.Paths["/x"].Put.BodyParameter().BodySchema
	if got := schema.Properties["count"].Shape; got.Kind != ShapePrimitive || got.Primitive != IntegerType {
		t.Fatalf("expected count to keep its declared type, got %+v", got)
	}
	if got := schema.Properties["note"].Shape; got.Primitive != StringType {
		t.Fatalf("expected untyped body param to fall back to string, got %+v", got)
	}
	if doc.Paths["/x"].Put.BodyParameter().Required != nil {
		t.Fatalf("expected merged body required to stay undeclared")
	}
}

func TestV2Compat_DuplicateBodyNames(t *testing.T) {
	t.Parallel()
	doc, diags := mustParse(t, `{"paths": {"/x": {"post": {
		"parameters": [
			{"in": "body", "name": "a", "schema": {"type": "string"}},
			{"in": "body", "name": "a", "schema": {"type": "integer"}},
			{"in": "body", "schema": {"type": "boolean"}},
			{"in": "body", "name": " ", "schema": {"type": "number"}}
		]
	}}}}`)
	props := doc.Paths["/x"].Post.BodyParameter().BodySchema.Properties
	if len(props) != 4 {
		t.Fatalf("expected every body parameter to be kept, got %v", SortedKeys(props))
	}
	want := map[string]PrimitiveType{"a": StringType, "a_2": IntegerType, "field": BooleanType, "field_2": NumberType}
	for name, typ := range want {
		if p := props[name]; p == nil || p.PrimitiveType != typ {
			t.Fatalf("property %q = %+v, want %s", name, p, typ)
		}
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "a, a_2, field, field_2") {
		t.Fatalf("expected renamed keys in diagnostic, got %v", diags)
	}
}

func TestV2Compat_SingleBodyUntouched(t *testing.T) {
	t.Parallel()
	doc, diags := mustParse(t, `{"paths": {"/x": {"post": {
		"parameters": [{"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/X"}}]
	}}}}`)
	bp := doc.Paths["/x"].Post.BodyParameter()
	if bp.Name != "payload" || bp.BodySchema.Reference != "#/definitions/X" {
		t.Fatalf("expected body left as is, got %+v", bp)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}
