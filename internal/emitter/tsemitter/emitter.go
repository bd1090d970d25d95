package tsemitter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	genspec "github.com/STNeto1/openapi-gen/internal/spec"
)

// Options controls how the TypeScript client is rendered and written.
type Options struct {
	OutPath         string // target file; required by Emit unless DryRun
	Source          string // recorded in the header comment when set
	DryRun          bool   // render only, don't write
	UniformOptional bool   // treat an undeclared `required` like `required: false`
	Logger          *slog.Logger
}

// Result is the rendered output of one generation run.
type Result struct {
	Fragments   []string
	Diagnostics []genspec.Diagnostic
	Definitions int
	Functions   []string
	OutPath     string
	Size        int
}

// Source concatenates the fragments into the complete file contents.
func (r *Result) Source() string { return strings.Join(r.Fragments, "") }

// Generate renders doc as an ordered list of TypeScript fragments: the fixed
// runtime preamble, one alias per definition sorted by type name, then the
// declarations of every operation, paths ascending and methods in
// genspec.Methods order.
func Generate(doc *genspec.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("tsemitter: nil Document")
	}
	g := &generator{
		doc:     doc,
		opts:    opts,
		resolve: NewResolver(doc, opts),
		used:    make(map[string]struct{}, len(runtimeIdentifiers)),
	}
	for _, id := range runtimeIdentifiers {
		g.used[id] = struct{}{}
	}
	g.emit(Preamble(g.source()))
	g.definitions()
	g.operations()

	res := &Result{
		Fragments:   g.fragments,
		Diagnostics: g.resolve.Diagnostics(),
		Definitions: g.defCount,
		Functions:   g.functions,
	}
	res.Size = len(res.Source())
	return res, nil
}

// Emit is Generate followed by an atomic write of the result to opts.OutPath.
// Parent directories are created as needed.
func Emit(ctx context.Context, doc *genspec.Document, opts Options) (*Result, error) {
	if !opts.DryRun && strings.TrimSpace(opts.OutPath) == "" {
		return nil, fmt.Errorf("tsemitter: OutPath is required")
	}
	res, err := Generate(doc, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.DryRun {
		res.OutPath = opts.OutPath
		return res, nil
	}
	abs, err := filepath.Abs(opts.OutPath)
	if err != nil {
		return nil, fmt.Errorf("resolve out path: %w", err)
	}
	if err := writeFile(abs, []byte(res.Source())); err != nil {
		return nil, err
	}
	res.OutPath = abs
	return res, nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

type generator struct {
	doc     *genspec.Document
	opts    Options
	resolve *Resolver

	// used holds every top-level identifier emitted so far.
	used      map[string]struct{}
	fragments []string
	functions []string
	defCount  int
}

func (g *generator) emit(s string) { g.fragments = append(g.fragments, s) }

func (g *generator) source() string {
	if g.opts.Source != "" {
		return g.opts.Source
	}
	if g.doc.Host != "" {
		return g.doc.Host + g.doc.BasePath
	}
	return ""
}

func (g *generator) warn(code genspec.DiagnosticCode, ptr, format string, args ...any) {
	g.resolve.warn(code, ptr, format, args...)
}

func (g *generator) claim(names ...string) bool {
	for _, n := range names {
		if _, taken := g.used[n]; taken {
			return false
		}
	}
	for _, n := range names {
		g.used[n] = struct{}{}
	}
	return true
}

type definitionEntry struct {
	name string
	key  string
}

func (g *generator) definitions() {
	entries := make([]definitionEntry, 0, len(g.doc.Definitions))
	for key := range g.doc.Definitions {
		entries = append(entries, definitionEntry{name: TypeName(key), key: key})
	}
	sortDefinitions(entries)

	for _, e := range entries {
		if !g.claim(e.name) {
			g.warn(genspec.NameCollision, genspec.Pointer("#/definitions", e.key),
				"definition %q flattens to %q which is already declared; skipped", e.key, e.name)
			continue
		}
		g.emit(fmt.Sprintf("export type %s = %s;\n", e.name, g.resolve.Definition(e.key, g.doc.Definitions[e.key])))
		g.defCount++
	}
}

// sortDefinitions orders by type name, then raw key, so that when two keys
// flatten to the same name the first one kept is stable.
func sortDefinitions(entries []definitionEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].name != entries[j].name {
			return entries[i].name < entries[j].name
		}
		return entries[i].key < entries[j].key
	})
}

func (g *generator) operations() {
	for _, path := range genspec.SortedKeys(g.doc.Paths) {
		item := g.doc.Paths[path]
		for _, m := range genspec.Methods {
			op := item.Operation(m)
			if op == nil {
				continue
			}
			g.operation(path, m, op)
		}
	}
}

func (g *generator) operation(path string, m genspec.HttpMethod, op *genspec.Operation) {
	ptr := genspec.Pointer(genspec.Pointer("#/paths", path), string(m))
	fn := g.functionName(path, m, op, ptr)
	paramsType := g.paramsTypeName(path, m, fn, ptr)

	var query, pathParams []string
	for i := range op.Parameters {
		p := &op.Parameters[i]
		pptr := fmt.Sprintf("%s/parameters/%d", ptr, i)
		switch p.Location {
		case genspec.InQuery:
			query = append(query, propertyKey(p.Name)+": "+g.resolve.Parameter(pptr, p))
		case genspec.InPath:
			pathParams = append(pathParams, propertyKey(p.Name)+": "+g.resolve.Parameter(pptr, p))
		}
	}
	g.emit(fmt.Sprintf("\n\ntype %s = { query: {%s}, path: {%s} };\n",
		paramsType, strings.Join(query, ", "), strings.Join(pathParams, ", ")))

	rptr := ptr + "/responses"
	g.emit(fmt.Sprintf("type %s_response = %s;\n", fn, g.resolve.Responses(rptr, op.Responses, SuccessClass)))
	g.emit(fmt.Sprintf("type %s_error = %s;\n", fn, g.resolve.Responses(rptr, op.Responses, ErrorClass)))

	url := strconv.Quote(path)
	if !m.Mutating() {
		g.emit(fmt.Sprintf("export async function %s(props: %s) {\n    return fetcher<%s_response, %s_error>(%s, props);\n}\n",
			fn, paramsType, fn, fn, url))
		g.functions = append(g.functions, fn)
		return
	}

	method := strconv.Quote(strings.ToUpper(string(m)))
	if body, ok := g.resolve.Body(ptr, op); ok {
		g.emit(fmt.Sprintf("type %s_body = %s;\n", fn, body))
		g.emit(fmt.Sprintf("export async function %s(props: %s, body: %s_body) {\n    return mutator<%s_body, %s_response, %s_error>(%s, %s, props, body);\n}\n",
			fn, paramsType, fn, fn, fn, fn, method, url))
	} else {
		g.emit(fmt.Sprintf("export async function %s(props: %s) {\n    return mutator<never, %s_response, %s_error>(%s, %s, props, null);\n}\n",
			fn, paramsType, fn, fn, method, url))
	}
	g.functions = append(g.functions, fn)
}

// functionName claims the synthesized function name together with its
// derived aliases. On collision it falls back to the operationId, then to a
// numeric suffix.
func (g *generator) functionName(path string, m genspec.HttpMethod, op *genspec.Operation, ptr string) string {
	base := FunctionName(m, path)
	if g.claimFunction(base) {
		return base
	}
	if id := OperationIDName(op.OperationID); id != "" && g.claimFunction(id) {
		g.warn(genspec.NameCollision, ptr, "function name %q already used; using operationId name %q", base, id)
		return id
	}
	for n := 2; ; n++ {
		name := base + "_" + strconv.Itoa(n)
		if g.claimFunction(name) {
			g.warn(genspec.NameCollision, ptr, "function name %q already used; using %q", base, name)
			return name
		}
	}
}

func (g *generator) claimFunction(name string) bool {
	return g.claim(name, name+"_response", name+"_error", name+"_body")
}

func (g *generator) paramsTypeName(path string, m genspec.HttpMethod, fn, ptr string) string {
	name := ParamsTypeName(path, string(m))
	if g.claim(name) {
		return name
	}
	fallback := fn + "_Params"
	for n := 2; !g.claim(fallback); n++ {
		fallback = fn + "_Params_" + strconv.Itoa(n)
	}
	g.warn(genspec.NameCollision, ptr, "params type %q already used; using %q", name, fallback)
	return fallback
}
