package tsemitter

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	genspec "github.com/STNeto1/openapi-gen/internal/spec"
)

// TypeName flattens a definition key into a TypeScript type name.
func TypeName(key string) string {
	return strings.ReplaceAll(key, ".", "_")
}

// RefName strips the definitions prefix from a reference and flattens the rest.
func RefName(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, genspec.DefinitionsPrefix); i >= 0 {
		name = ref[i+len(genspec.DefinitionsPrefix):]
	}
	return TypeName(name)
}

// FunctionName derives the client function name for a method and URL template:
// the lowercase method followed by each literal segment, with `by_` standing in
// for path variables.
//
//	get /users/{id}/posts -> get_users_by_posts
func FunctionName(method genspec.HttpMethod, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(method)))
	b.WriteByte('_')
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			b.WriteString("by_")
			continue
		}
		b.WriteString(seg)
		b.WriteByte('_')
	}
	name := strings.TrimRight(b.String(), "_")
	return strings.ReplaceAll(name, "-", "_")
}

var paramsReplacer = strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_")

// ParamsTypeName derives the input parameters type name for a URL template.
//
//	("/users/{id}", "get") -> get_users_id_Params
func ParamsTypeName(path, prefix string) string {
	return prefix + paramsReplacer.Replace(path) + "_Params"
}

// OperationIDName turns an operationId into a snake_case identifier. It
// returns "" when nothing usable is left.
func OperationIDName(id string) string {
	snake := strcase.ToSnake(strings.TrimSpace(id))
	var b strings.Builder
	for _, r := range snake {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "op_" + out
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// propertyKey quotes names that are not valid identifiers. JSON string
// escapes are valid in TypeScript string literals.
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return `""`
	}
	return strings.TrimSuffix(b.String(), "\n")
}
