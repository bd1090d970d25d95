package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Parse decodes a Swagger 2.0 style JSON document into the schema model.
//
// Absent optional members fall back to empty values. Structural members of
// the wrong shape (paths or definitions that are not objects, operations
// that are not objects, unknown parameter locations, invalid JSON) fail with
// a *SpecError carrying Code MalformedDocument. Recoverable oddities are
// returned as diagnostics alongside the document.
func Parse(data []byte) (*Document, []Diagnostic, error) {
	d := &decoder{}
	doc, err := d.document(data)
	if err != nil {
		return nil, d.diags, err
	}
	return doc, d.diags, nil
}

type decoder struct {
	diags []Diagnostic
}

func (d *decoder) warn(code DiagnosticCode, pointer, format string, args ...any) {
	d.diags = append(d.diags, Diagnostic{Code: code, Pointer: pointer, Message: fmt.Sprintf(format, args...)})
}

type rawSchema struct {
	Type                 json.RawMessage   `json:"type"`
	Ref                  string            `json:"$ref"`
	Description          json.RawMessage   `json:"description"`
	Items                json.RawMessage   `json:"items"`
	AdditionalProperties json.RawMessage   `json:"additionalProperties"`
	Properties           json.RawMessage   `json:"properties"`
	Enum                 []json.RawMessage `json:"enum"`
}

type rawOperation struct {
	OperationID json.RawMessage `json:"operationId"`
	Summary     json.RawMessage `json:"summary"`
	Tags        json.RawMessage `json:"tags"`
	Parameters  json.RawMessage `json:"parameters"`
	Responses   json.RawMessage `json:"responses"`
}

type rawParameter struct {
	Ref      string            `json:"$ref"`
	Name     string            `json:"name"`
	In       string            `json:"in"`
	Type     json.RawMessage   `json:"type"`
	Required *bool             `json:"required"`
	Schema   json.RawMessage   `json:"schema"`
	Items    json.RawMessage   `json:"items"`
	Enum     []json.RawMessage `json:"enum"`
}

type rawResponse struct {
	Description json.RawMessage `json:"description"`
	Schema      json.RawMessage `json:"schema"`
}

func (d *decoder) document(data []byte) (*Document, error) {
	if isNull(data) {
		return nil, malformed("#", nil, "document is not a JSON object")
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, syntaxError(err)
	}

	doc := &Document{
		Host:        lenientString(root["host"]),
		BasePath:    lenientString(root["basePath"]),
		Schemes:     lenientStrings(root["schemes"]),
		Definitions: map[string]*Definition{},
		Paths:       map[string]*PathItem{},
	}

	defs, err := members(root["definitions"], "#/definitions")
	if err != nil {
		return nil, err
	}
	for name, raw := range defs {
		def, err := d.definition(raw, Pointer("#/definitions", name))
		if err != nil {
			return nil, err
		}
		doc.Definitions[name] = def
	}

	paths, err := members(root["paths"], "#/paths")
	if err != nil {
		return nil, err
	}
	for path, raw := range paths {
		item, err := d.pathItem(raw, Pointer("#/paths", path))
		if err != nil {
			return nil, err
		}
		doc.Paths[path] = item
	}
	return doc, nil
}

func (d *decoder) definition(raw json.RawMessage, ptr string) (*Definition, error) {
	s, err := d.schema(raw, ptr)
	if err != nil {
		return nil, err
	}
	def := &Definition{Description: s.Description, Schema: s}
	switch {
	case s.EnumValues != nil:
		def.Kind = EnumDefinition
		def.EnumValues = s.EnumValues
	case (s.PrimitiveType == ObjectType || s.RawType == "") &&
		s.Reference == "" && s.Items == nil && s.AdditionalProperties == nil:
		def.Kind = ObjectDefinition
		def.Properties = s.Properties
		if def.Properties == nil {
			def.Properties = map[string]*Property{}
		}
	default:
		def.Kind = AliasDefinition
	}
	return def, nil
}

func (d *decoder) schema(raw json.RawMessage, ptr string) (*Property, error) {
	var rs rawSchema
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, malformed(ptr, err, "invalid schema")
	}
	typ := schemaType(rs.Type)
	p := &Property{
		RawType:     typ,
		Reference:   rs.Ref,
		Description: lenientString(rs.Description),
	}
	if PrimitiveType(typ).Known() {
		p.PrimitiveType = PrimitiveType(typ)
	}
	if present(rs.Items) {
		items, err := d.itemShape(rs.Items, ptr+"/items", false)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	if present(rs.AdditionalProperties) {
		additional, err := d.itemShape(rs.AdditionalProperties, ptr+"/additionalProperties", true)
		if err != nil {
			return nil, err
		}
		p.AdditionalProperties = additional
	}
	if present(rs.Properties) {
		props, err := members(rs.Properties, ptr+"/properties")
		if err != nil {
			return nil, err
		}
		p.Properties = make(map[string]*Property, len(props))
		for name, praw := range props {
			prop, err := d.schema(praw, Pointer(ptr+"/properties", name))
			if err != nil {
				return nil, err
			}
			p.Properties[name] = prop
		}
	}
	if rs.Enum != nil {
		p.EnumValues = enumValues(rs.Enum)
	}
	p.Shape = classify(p)
	return p, nil
}

// itemShape decodes `items` or `additionalProperties`. Objects that look like a
// schema are decoded recursively; any other object is a flat map of field name
// to type name, the inline form older generators emit.
func (d *decoder) itemShape(raw json.RawMessage, ptr string, allowBool bool) (*ItemShape, error) {
	trimmed := bytes.TrimSpace(raw)
	if allowBool {
		switch string(trimmed) {
		case "true":
			return &ItemShape{Any: true}, nil
		case "false":
			return nil, nil
		}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, malformed(ptr, err, "expected an object")
	}
	if allowBool && len(m) == 0 {
		return &ItemShape{Any: true}, nil
	}
	if looksLikeSchema(m) {
		s, err := d.schema(trimmed, ptr)
		if err != nil {
			return nil, err
		}
		if s.Shape.Kind == ShapeReference && len(m) == 1 {
			return &ItemShape{Reference: s.Reference}, nil
		}
		return &ItemShape{Schema: s}, nil
	}
	fields := make(map[string]string, len(m))
	for name, v := range m {
		var typeName string
		if err := json.Unmarshal(v, &typeName); err != nil {
			return nil, malformed(Pointer(ptr, name), err, "expected a type name")
		}
		fields[name] = typeName
	}
	return &ItemShape{Fields: fields}, nil
}

func looksLikeSchema(m map[string]json.RawMessage) bool {
	if ref, ok := m["$ref"]; ok && isJSONString(ref) {
		return true
	}
	if t, ok := m["type"]; ok && PrimitiveType(schemaType(t)).Known() {
		return true
	}
	for _, key := range []string{"properties", "items", "additionalProperties"} {
		if v, ok := m[key]; ok && !isJSONString(v) {
			return true
		}
	}
	if v, ok := m["enum"]; ok && bytes.HasPrefix(bytes.TrimSpace(v), []byte("[")) {
		return true
	}
	return false
}

// classify picks the one Shape the resolver will render for p.
func classify(p *Property) Shape {
	hasRef := p.Reference != ""
	switch {
	case p.RawType != "" && !p.PrimitiveType.Known():
		return Shape{Kind: ShapeUnresolved, Reason: fmt.Sprintf("unsupported type %q", p.RawType)}
	case p.PrimitiveType == ArrayType:
		return classifyArray(p)
	case p.PrimitiveType == ObjectType:
		return classifyObject(p)
	case p.PrimitiveType == NoType:
		switch {
		case hasRef && (p.Items != nil || p.Properties != nil || p.AdditionalProperties != nil):
			return Shape{Kind: ShapeAmbiguous, Reason: "$ref declared together with inline members"}
		case hasRef:
			return Shape{Kind: ShapeReference, Name: p.Reference}
		case p.EnumValues != nil:
			return Shape{Kind: ShapeEnum, Enum: p.EnumValues}
		case p.Items != nil:
			return classifyArray(p)
		case p.Properties != nil || p.AdditionalProperties != nil:
			return classifyObject(p)
		}
		return Shape{Kind: ShapeUnresolved}
	}
	if p.PrimitiveType == StringType && p.EnumValues != nil {
		return Shape{Kind: ShapeEnum, Enum: p.EnumValues}
	}
	return Shape{Kind: ShapePrimitive, Primitive: p.PrimitiveType}
}

func classifyArray(p *Property) Shape {
	if declared := declaredMembers(p, false); len(declared) > 1 {
		return Shape{Kind: ShapeAmbiguous, Reason: "array declares both " + strings.Join(declared, " and ")}
	}
	switch {
	case p.Reference != "":
		return Shape{Kind: ShapeArrayOfReference, Name: p.Reference}
	case p.Items != nil && p.Items.Reference != "":
		return Shape{Kind: ShapeArrayOfReference, Name: p.Items.Reference}
	case p.Items != nil && p.Items.Schema != nil:
		return Shape{Kind: ShapeArray, Elem: p.Items.Schema}
	case p.Items != nil:
		return Shape{Kind: ShapeArrayOfObject, Fields: p.Items.Fields}
	}
	return Shape{Kind: ShapeUnresolved, Reason: "array without $ref or items"}
}

func classifyObject(p *Property) Shape {
	if declared := declaredMembers(p, true); len(declared) > 1 {
		return Shape{Kind: ShapeAmbiguous, Reason: "object declares both " + strings.Join(declared, " and ")}
	}
	switch {
	case p.Reference != "":
		return Shape{Kind: ShapeReference, Name: p.Reference}
	case p.Items != nil:
		switch {
		case p.Items.Reference != "":
			return Shape{Kind: ShapeReference, Name: p.Items.Reference}
		case p.Items.Schema != nil:
			return Shape{Kind: ShapeAlias, Elem: p.Items.Schema}
		}
		return Shape{Kind: ShapeInlineObject, Fields: p.Items.Fields}
	case p.AdditionalProperties != nil:
		ap := p.AdditionalProperties
		switch {
		case ap.Any:
			return Shape{Kind: ShapeMap}
		case ap.Reference != "":
			elem := &Property{Reference: ap.Reference}
			elem.Shape = Shape{Kind: ShapeReference, Name: ap.Reference}
			return Shape{Kind: ShapeMap, Elem: elem}
		case ap.Schema != nil:
			return Shape{Kind: ShapeMap, Elem: ap.Schema}
		}
		return Shape{Kind: ShapeInlineObject, Fields: ap.Fields}
	case p.Properties != nil:
		return Shape{Kind: ShapeObject, Props: p.Properties}
	}
	return Shape{Kind: ShapeUnresolved, Reason: "object without $ref, items, additionalProperties or properties"}
}

func declaredMembers(p *Property, object bool) []string {
	var out []string
	if p.Reference != "" {
		out = append(out, "$ref")
	}
	if p.Items != nil {
		out = append(out, "items")
	}
	if object {
		if p.AdditionalProperties != nil {
			out = append(out, "additionalProperties")
		}
		if p.Properties != nil {
			out = append(out, "properties")
		}
	}
	return out
}

func (d *decoder) pathItem(raw json.RawMessage, ptr string) (*PathItem, error) {
	m, err := members(raw, ptr)
	if err != nil {
		return nil, err
	}
	var shared []Parameter
	if present(m["parameters"]) {
		shared, err = d.parameters(m["parameters"], ptr+"/parameters")
		if err != nil {
			return nil, err
		}
	}
	item := &PathItem{}
	for _, method := range Methods {
		opRaw, ok := m[string(method)]
		if !ok || !present(opRaw) {
			continue
		}
		op, err := d.operation(opRaw, Pointer(ptr, string(method)), shared)
		if err != nil {
			return nil, err
		}
		item.SetOperation(method, op)
	}
	return item, nil
}

func (d *decoder) operation(raw json.RawMessage, ptr string, shared []Parameter) (*Operation, error) {
	var ro rawOperation
	if err := json.Unmarshal(raw, &ro); err != nil {
		return nil, malformed(ptr, err, "operation is not an object")
	}
	op := &Operation{
		OperationID: lenientString(ro.OperationID),
		Summary:     lenientString(ro.Summary),
		Tags:        lenientStrings(ro.Tags),
		Responses:   map[string]*Response{},
	}

	var own []Parameter
	if present(ro.Parameters) {
		var err error
		own, err = d.parameters(ro.Parameters, ptr+"/parameters")
		if err != nil {
			return nil, err
		}
	}
	op.Parameters = mergeParameters(shared, own)
	mergeBodyParameters(op, ptr, d)

	responses, err := members(ro.Responses, ptr+"/responses")
	if err != nil {
		return nil, err
	}
	for code, rraw := range responses {
		rptr := Pointer(ptr+"/responses", code)
		var rr rawResponse
		if err := json.Unmarshal(rraw, &rr); err != nil {
			return nil, malformed(rptr, err, "response is not an object")
		}
		resp := &Response{StatusCode: code, Description: lenientString(rr.Description)}
		if present(rr.Schema) {
			s, err := d.schema(rr.Schema, rptr+"/schema")
			if err != nil {
				return nil, err
			}
			resp.Schema = s
		}
		op.Responses[code] = resp
	}
	return op, nil
}

func (d *decoder) parameters(raw json.RawMessage, ptr string) ([]Parameter, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, malformed(ptr, err, "parameters is not an array")
	}
	out := make([]Parameter, 0, len(list))
	for i, praw := range list {
		pptr := fmt.Sprintf("%s/%d", ptr, i)
		var rp rawParameter
		if err := json.Unmarshal(praw, &rp); err != nil {
			return nil, malformed(pptr, err, "parameter is not an object")
		}
		if rp.Ref != "" {
			d.warn(UnsupportedParameter, pptr, "parameter reference %q is not followed", rp.Ref)
			continue
		}
		loc := ParameterLocation(strings.TrimSpace(rp.In))
		switch loc {
		case InQuery, InPath, InBody:
		case "header", "formData", "cookie":
			d.warn(UnsupportedParameter, pptr, "parameter %q in %s is not modeled", rp.Name, loc)
			continue
		default:
			return nil, malformed(pptr, nil, "unknown parameter location %q", rp.In)
		}

		typ := schemaType(rp.Type)
		p := Parameter{
			Name:     rp.Name,
			Location: loc,
			RawType:  typ,
			Required: rp.Required,
		}
		if PrimitiveType(typ).Known() {
			p.PrimitiveType = PrimitiveType(typ)
		}
		if loc == InBody {
			if present(rp.Schema) {
				s, err := d.schema(rp.Schema, pptr+"/schema")
				if err != nil {
					return nil, err
				}
				p.BodySchema = s
			}
			out = append(out, p)
			continue
		}
		if present(rp.Items) {
			items, err := d.itemShape(rp.Items, pptr+"/items", false)
			if err != nil {
				return nil, err
			}
			p.Items = items
		}
		value := &Property{PrimitiveType: p.PrimitiveType, RawType: typ, Items: p.Items}
		if rp.Enum != nil {
			value.EnumValues = enumValues(rp.Enum)
		}
		value.Shape = classify(value)
		p.Value = value
		out = append(out, p)
	}
	return out, nil
}

// mergeParameters applies path-level parameters first, overridden by
// operation-level ones with the same location and name.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	out := make([]Parameter, 0, len(shared)+len(own))
	index := make(map[string]int, len(shared))
	for _, p := range shared {
		index[paramKey(p)] = len(out)
		out = append(out, p)
	}
	for _, p := range own {
		if i, ok := index[paramKey(p)]; ok {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func paramKey(p Parameter) string { return string(p.Location) + ":" + p.Name }

// members decodes a JSON object into its raw members. Absent or null input
// yields an empty map.
func members(raw json.RawMessage, ptr string) (map[string]json.RawMessage, error) {
	if !present(raw) {
		return map[string]json.RawMessage{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, malformed(ptr, err, "expected an object")
	}
	return m, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func syntaxError(err error) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		e := malformed("", err, "parse document at offset %d", se.Offset)
		e.Offset = se.Offset
		return e
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		e := malformed("#", err, "document is not a JSON object")
		e.Offset = te.Offset
		return e
	}
	return malformed("", err, "parse document")
}

func schemaType(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// JSON Schema allows a list of types; the first non-null entry wins.
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, t := range list {
			if t != "null" {
				return strings.TrimSpace(t)
			}
		}
	}
	return ""
}

func enumValues(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(v)))
	}
	return out
}

func lenientString(raw json.RawMessage) string {
	var s string
	if present(raw) {
		_ = json.Unmarshal(raw, &s)
	}
	return strings.TrimSpace(s)
}

func lenientStrings(raw json.RawMessage) []string {
	if !present(raw) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func present(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) > 0 && !isNull(raw)
}

func isNull(raw []byte) bool { return string(bytes.TrimSpace(raw)) == "null" }

func isJSONString(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`))
}
