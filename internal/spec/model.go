package spec

// Schema model decoded from a Swagger 2.0 style document. Nothing here
// resolves types; the emitters read it and decide what to print.

type HttpMethod string

const (
	GET    HttpMethod = "get"
	POST   HttpMethod = "post"
	PUT    HttpMethod = "put"
	DELETE HttpMethod = "delete"
	PATCH  HttpMethod = "patch"
)

// Methods lists the modeled HTTP methods in emission priority order.
var Methods = []HttpMethod{GET, POST, PUT, DELETE, PATCH}

// Mutating reports whether the method carries a request body.
func (m HttpMethod) Mutating() bool { return m != GET }

// DefinitionsPrefix is the JSON pointer prefix of references into Document.Definitions.
const DefinitionsPrefix = "#/definitions/"

type Document struct {
	Host        string
	BasePath    string
	Schemes     []string
	Definitions map[string]*Definition
	Paths       map[string]*PathItem
}

type DefinitionKind string

const (
	ObjectDefinition DefinitionKind = "object"
	EnumDefinition   DefinitionKind = "enum"
	// AliasDefinition is a definition that is neither an object nor an enum,
	// e.g. `{"type": "array", "items": {...}}`. Its Schema is resolved like a property.
	AliasDefinition DefinitionKind = "alias"
)

type Definition struct {
	Kind        DefinitionKind
	Description string
	Properties  map[string]*Property
	EnumValues  []string
	Schema      *Property
}

type PrimitiveType string

const (
	NoType      PrimitiveType = ""
	StringType  PrimitiveType = "string"
	IntegerType PrimitiveType = "integer"
	NumberType  PrimitiveType = "number"
	BooleanType PrimitiveType = "boolean"
	ArrayType   PrimitiveType = "array"
	ObjectType  PrimitiveType = "object"
)

// Known reports whether t is one of the modeled JSON schema types.
func (t PrimitiveType) Known() bool {
	switch t {
	case StringType, IntegerType, NumberType, BooleanType, ArrayType, ObjectType:
		return true
	}
	return false
}

// Property is one schema position: an object field, array items, a body or
// response schema. The raw attributes are kept for inspection; Shape is the
// single classification the resolver switches on.
type Property struct {
	PrimitiveType        PrimitiveType
	RawType              string
	Reference            string
	Description          string
	Items                *ItemShape
	AdditionalProperties *ItemShape
	Properties           map[string]*Property
	EnumValues           []string
	Shape                Shape
}

// ItemShape is the content of an `items` or `additionalProperties` keyword.
// Exactly one field is set.
type ItemShape struct {
	Reference string
	Fields    map[string]string
	Schema    *Property
	Any       bool // additionalProperties: true
}

type ShapeKind uint8

const (
	ShapeUnresolved ShapeKind = iota
	ShapePrimitive
	ShapeReference
	ShapeArrayOfReference
	ShapeArray
	ShapeArrayOfObject
	ShapeInlineObject
	ShapeObject
	ShapeMap
	ShapeEnum
	ShapeAlias
	ShapeAmbiguous
)

var shapeNames = [...]string{
	ShapeUnresolved:       "unresolved",
	ShapePrimitive:        "primitive",
	ShapeReference:        "reference",
	ShapeArrayOfReference: "array-of-reference",
	ShapeArray:            "array",
	ShapeArrayOfObject:    "array-of-object",
	ShapeInlineObject:     "inline-object",
	ShapeObject:           "object",
	ShapeMap:              "map",
	ShapeEnum:             "enum",
	ShapeAlias:            "alias",
	ShapeAmbiguous:        "ambiguous",
}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return "unknown"
}

// Shape is the tagged variant chosen for a Property at decode time.
//
//	ShapePrimitive        Primitive
//	ShapeReference        Name (raw $ref)
//	ShapeArrayOfReference Name (raw $ref of the element)
//	ShapeArray            Elem
//	ShapeArrayOfObject    Fields
//	ShapeInlineObject     Fields
//	ShapeObject           Props
//	ShapeMap              Elem (nil means any value)
//	ShapeEnum             Enum
//	ShapeAlias            Elem
//	ShapeUnresolved       Reason (empty when nothing was declared at all)
//	ShapeAmbiguous        Reason
type Shape struct {
	Kind      ShapeKind
	Primitive PrimitiveType
	Name      string
	Fields    map[string]string
	Props     map[string]*Property
	Elem      *Property
	Enum      []string
	Reason    string
}

type PathItem struct {
	Get    *Operation
	Post   *Operation
	Put    *Operation
	Delete *Operation
	Patch  *Operation
}

// Operation returns the operation declared for m, or nil.
func (p *PathItem) Operation(m HttpMethod) *Operation {
	if p == nil {
		return nil
	}
	switch m {
	case GET:
		return p.Get
	case POST:
		return p.Post
	case PUT:
		return p.Put
	case DELETE:
		return p.Delete
	case PATCH:
		return p.Patch
	}
	return nil
}

// SetOperation stores op under m. Unknown methods are ignored.
func (p *PathItem) SetOperation(m HttpMethod, op *Operation) {
	switch m {
	case GET:
		p.Get = op
	case POST:
		p.Post = op
	case PUT:
		p.Put = op
	case DELETE:
		p.Delete = op
	case PATCH:
		p.Patch = op
	}
}

type Operation struct {
	OperationID string
	Summary     string
	Tags        []string
	Parameters  []Parameter
	Responses   map[string]*Response
}

// BodyParameter returns the single parameter located in the body, or nil.
func (o *Operation) BodyParameter() *Parameter {
	for i := range o.Parameters {
		if o.Parameters[i].Location == InBody {
			return &o.Parameters[i]
		}
	}
	return nil
}

type ParameterLocation string

const (
	InQuery ParameterLocation = "query"
	InPath  ParameterLocation = "path"
	InBody  ParameterLocation = "body"
)

type Parameter struct {
	Name          string
	Location      ParameterLocation
	PrimitiveType PrimitiveType
	RawType       string
	Required      *bool
	Items         *ItemShape
	// Value is the classified schema of a query or path parameter.
	Value      *Property
	BodySchema *Property
}

type Response struct {
	StatusCode  string
	Description string
	Schema      *Property
}
