package spec

import (
	"strconv"
	"strings"
)

// mergeBodyParameters rewrites non-compliant Swagger v2 operations that declare
// more than one body parameter. The body parameters are merged into a single
// parameter named "body" whose schema is an inline object with one property per
// original parameter, so the operation keeps exactly one request body type.
//
// The merged parameter takes the position of the first body parameter. It is
// required when any of the originals was.
func mergeBodyParameters(op *Operation, ptr string, d *decoder) {
	count := 0
	for _, p := range op.Parameters {
		if p.Location == InBody {
			count++
		}
	}
	if count < 2 {
		return
	}

	props := make(map[string]*Property, count)
	names := make([]string, 0, count)
	required := false
	out := make([]Parameter, 0, len(op.Parameters)-count+1)
	mergedAt := -1
	for _, p := range op.Parameters {
		if p.Location != InBody {
			out = append(out, p)
			continue
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "field"
		}
		schema := p.BodySchema
		if schema == nil {
			// Synthesize a schema from the parameter type when present.
			schema = &Property{PrimitiveType: p.PrimitiveType, RawType: p.RawType, Items: p.Items}
			if schema.RawType == "" {
				schema.PrimitiveType, schema.RawType = StringType, string(StringType)
			}
			schema.Shape = classify(schema)
		}
		name = uniqueKey(props, name)
		props[name] = schema
		names = append(names, name)
		if p.Required != nil && *p.Required {
			required = true
		}
		if mergedAt < 0 {
			mergedAt = len(out)
			out = append(out, Parameter{})
		}
	}

	body := &Property{PrimitiveType: ObjectType, RawType: string(ObjectType), Properties: props}
	body.Shape = classify(body)
	merged := Parameter{Name: "body", Location: InBody, BodySchema: body}
	if required {
		merged.Required = &required
	}
	out[mergedAt] = merged
	op.Parameters = out

	d.warn(MergedBodyParameters, ptr+"/parameters", "merged body parameters %s into one request body", strings.Join(names, ", "))
}

// uniqueKey returns name, or name with the first free numeric suffix when
// props already holds it.
func uniqueKey(props map[string]*Property, name string) string {
	if _, taken := props[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if _, taken := props[candidate]; !taken {
			return candidate
		}
	}
}
