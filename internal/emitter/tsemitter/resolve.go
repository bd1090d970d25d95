package tsemitter

import (
	"fmt"
	"log/slog"
	"strings"

	genspec "github.com/STNeto1/openapi-gen/internal/spec"
)

const (
	// BottomType is emitted wherever nothing can be known about a type.
	BottomType = "never"
	// UnknownResult is the pending result of a response without a usable schema.
	UnknownResult = "Promise<unknown>"
)

// StatusClass selects which responses take part in a union.
type StatusClass int

const (
	SuccessClass StatusClass = iota // 2xx
	ErrorClass                      // 4xx and 5xx
)

func (c StatusClass) matches(code string) bool {
	switch c {
	case SuccessClass:
		return strings.HasPrefix(code, "2")
	case ErrorClass:
		return strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5")
	}
	return false
}

// Resolver maps schema positions of a document to TypeScript type expressions.
//
// Resolution never fails. Shapes that cannot be rendered become BottomType and
// are recorded as diagnostics. References are rendered by name only, so
// mutually recursive definitions need no special handling.
type Resolver struct {
	known           map[string]struct{}
	uniformOptional bool
	logger          *slog.Logger
	diags           []genspec.Diagnostic
}

// NewResolver returns a Resolver for doc. A nil doc disables dangling
// reference checks.
func NewResolver(doc *genspec.Document, opts Options) *Resolver {
	r := &Resolver{uniformOptional: opts.UniformOptional, logger: opts.Logger}
	if doc != nil {
		r.known = make(map[string]struct{}, len(doc.Definitions))
		for name := range doc.Definitions {
			r.known[TypeName(name)] = struct{}{}
		}
	}
	return r
}

// Diagnostics returns everything recorded so far.
func (r *Resolver) Diagnostics() []genspec.Diagnostic { return r.diags }

func (r *Resolver) warn(code genspec.DiagnosticCode, ptr, format string, args ...any) {
	d := genspec.Diagnostic{Code: code, Pointer: ptr, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	if r.logger != nil {
		r.logger.Warn(d.Message, "code", string(code), "pointer", ptr)
	}
}

// Definition resolves the right-hand side of a definition's type alias.
func (r *Resolver) Definition(key string, def *genspec.Definition) string {
	ptr := genspec.Pointer("#/definitions", key)
	if def == nil {
		return BottomType
	}
	switch def.Kind {
	case genspec.EnumDefinition:
		return enumUnion(def.EnumValues)
	case genspec.AliasDefinition:
		return r.Property(ptr, def.Schema)
	}
	return r.object(ptr, def.Properties)
}

// Property resolves one schema position.
func (r *Resolver) Property(ptr string, p *genspec.Property) string {
	if p == nil {
		return BottomType
	}
	s := p.Shape
	switch s.Kind {
	case genspec.ShapePrimitive:
		return primitive(s.Primitive)
	case genspec.ShapeReference:
		return r.reference(ptr, s.Name)
	case genspec.ShapeArrayOfReference:
		return arrayOf(r.reference(ptr, s.Name))
	case genspec.ShapeArray:
		return arrayOf(r.Property(ptr+"/items", s.Elem))
	case genspec.ShapeArrayOfObject:
		return arrayOf(r.fields(ptr+"/items", s.Fields))
	case genspec.ShapeInlineObject:
		return r.fields(ptr, s.Fields)
	case genspec.ShapeObject:
		return r.object(ptr, s.Props)
	case genspec.ShapeMap:
		value := "unknown"
		if s.Elem != nil {
			value = r.Property(ptr+"/additionalProperties", s.Elem)
		}
		return "{[key:string]:" + value + ";}"
	case genspec.ShapeEnum:
		return enumUnion(s.Enum)
	case genspec.ShapeAlias:
		return r.Property(ptr+"/items", s.Elem)
	case genspec.ShapeAmbiguous:
		r.warn(genspec.AmbiguousShape, ptr, "%s", s.Reason)
		return BottomType
	case genspec.ShapeUnresolved:
		if s.Reason != "" {
			r.warn(genspec.UnresolvableType, ptr, "%s", s.Reason)
		}
		return BottomType
	}
	return BottomType
}

// Parameter resolves a query or path parameter including its optionality:
//
//	required: true   T
//	required: false  T | null
//	required absent  T | null | undefined
//
// With UniformOptional the absent case renders like required: false.
func (r *Resolver) Parameter(ptr string, p *genspec.Parameter) string {
	if p == nil || p.RawType == "" || p.Value == nil {
		return BottomType
	}
	t := r.Property(ptr, p.Value)
	switch {
	case p.Required != nil && *p.Required:
		return t
	case p.Required != nil || r.uniformOptional:
		return union(t, "null")
	}
	return union(t, "null", "undefined")
}

// Body resolves the request body of op. ok is false when the operation sends
// no body, in which case the type is BottomType.
func (r *Resolver) Body(ptr string, op *genspec.Operation) (t string, ok bool) {
	bp := op.BodyParameter()
	if bp == nil {
		return BottomType, false
	}
	if bp.BodySchema == nil {
		r.warn(genspec.MissingSchema, ptr+"/parameters", "body parameter %q has no schema", bp.Name)
		return BottomType, false
	}
	return r.Property(ptr+"/parameters/"+bp.Name+"/schema", bp.BodySchema), true
}

// Responses builds the union of pending results for the responses of one
// status class. Operands are taken in ascending status-code order and
// duplicates collapse onto their first occurrence. An empty error class is
// BottomType; an empty success class is UnknownResult.
func (r *Resolver) Responses(ptr string, responses map[string]*genspec.Response, class StatusClass) string {
	var operands []string
	for _, code := range genspec.SortedKeys(responses) {
		if !class.matches(code) {
			continue
		}
		operands = append(operands, r.Response(genspec.Pointer(ptr, code), responses[code]))
	}
	if len(operands) == 0 {
		if class == ErrorClass {
			return BottomType
		}
		return UnknownResult
	}
	return union(operands...)
}

// Response wraps the resolved schema of resp in Promise<...>.
func (r *Resolver) Response(ptr string, resp *genspec.Response) string {
	if resp == nil || resp.Schema == nil {
		r.warn(genspec.MissingSchema, ptr, "no schema found for response")
		return UnknownResult
	}
	t := r.Property(ptr+"/schema", resp.Schema)
	if t == BottomType {
		return UnknownResult
	}
	return "Promise<" + t + ">"
}

func (r *Resolver) reference(ptr, ref string) string {
	name := RefName(ref)
	if r.known != nil && strings.Contains(ref, genspec.DefinitionsPrefix) {
		if _, ok := r.known[name]; !ok {
			r.warn(genspec.DanglingReference, ptr, "reference %q does not name a definition", ref)
		}
	}
	return name
}

func (r *Resolver) object(ptr string, props map[string]*genspec.Property) string {
	var b strings.Builder
	b.WriteByte('{')
	for _, name := range genspec.SortedKeys(props) {
		b.WriteString(propertyKey(name))
		b.WriteByte(':')
		b.WriteString(r.Property(genspec.Pointer(ptr+"/properties", name), props[name]))
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}

// fields renders an inline field-name to type-name map as an object literal.
func (r *Resolver) fields(ptr string, fields map[string]string) string {
	var b strings.Builder
	b.WriteByte('{')
	for _, name := range genspec.SortedKeys(fields) {
		b.WriteString(propertyKey(name))
		b.WriteByte(':')
		b.WriteString(r.fieldType(genspec.Pointer(ptr, name), fields[name]))
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}

func (r *Resolver) fieldType(ptr, typeName string) string {
	switch p := genspec.PrimitiveType(typeName); p {
	case genspec.StringType, genspec.IntegerType, genspec.NumberType, genspec.BooleanType:
		return primitive(p)
	}
	return r.reference(ptr, typeName)
}

func primitive(t genspec.PrimitiveType) string {
	switch t {
	case genspec.StringType:
		return "string"
	case genspec.IntegerType, genspec.NumberType:
		return "number"
	case genspec.BooleanType:
		return "boolean"
	}
	return BottomType
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`,
	"\u2028", `\u2028`, "\u2029", `\u2029`)

// enumUnion renders values as single-quoted literals in source order.
func enumUnion(values []string) string {
	if len(values) == 0 {
		return BottomType
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + literalEscaper.Replace(v) + "'"
	}
	return strings.Join(parts, " | ")
}

func arrayOf(t string) string {
	if strings.Contains(t, "|") {
		return "(" + t + ")[]"
	}
	return t + "[]"
}

// union joins operands with |, dropping repeats after their first occurrence.
func union(operands ...string) string {
	seen := make(map[string]struct{}, len(operands))
	out := make([]string, 0, len(operands))
	for _, o := range operands {
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return strings.Join(out, " | ")
}
