package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecJSON = `{
  "swagger": "2.0",
  "definitions": {
    "User": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}}
  },
  "paths": {
    "/users/{id}": {
      "get": {
        "tags": ["users"],
        "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
        "responses": {"200": {"schema": {"$ref": "#/definitions/User"}}}
      },
      "delete": {
        "tags": ["admin"],
        "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
        "responses": {"204": {"description": "gone"}}
      }
    }
  }
}`

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeSpec(t *testing.T, dir, content string) string {
	t.Helper()
	specPath := filepath.Join(dir, "swagger.json")
	if err := os.WriteFile(specPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func runRoot(args ...string) error {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func TestGeneratePipeline_WritesClient(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, minimalSpecJSON)
	outPath := filepath.Join(dir, "lib", "types.ts")

	out := captureStdout(func() {
		if err := runRoot("generate", "--source", specPath, "--path", outPath); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Wrote "+outPath) {
		t.Fatalf("expected summary output, got: %s", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		"// Code generated by api-gen. DO NOT EDIT.",
		"export type User = {id:number;name:string;};",
		"export async function get_users_by(props: get_users_id_Params)",
		`mutator<never, delete_users_by_response, delete_users_by_error>("DELETE", "/users/{id}", props, null);`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in output:\n%s", want, s)
		}
	}
}

func TestGeneratePipeline_FiltersFromConfig(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, minimalSpecJSON)
	outPath := filepath.Join(dir, "api.ts")
	cfgPath := filepath.Join(dir, "api-gen.json")
	cfg := `{"source": "` + filepath.ToSlash(specPath) + `", "path": "` + filepath.ToSlash(outPath) + `", "excludeTags": ["admin"]}`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_ = captureStdout(func() {
		if err := runRoot("--config", cfgPath, "g"); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), "delete_users_by") {
		t.Fatalf("expected admin operations to be filtered out")
	}
	if !strings.Contains(string(data), "get_users_by") {
		t.Fatalf("expected users operations to be kept")
	}
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, minimalSpecJSON)
	outPath := filepath.Join(dir, "out", "types.ts")

	out := captureStdout(func() {
		if err := runRoot("generate", "--source", specPath, "--path", outPath, "--dry-run"); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Dry run: would write") {
		t.Fatalf("expected dry-run output, got: %s", out)
	}
	// Dry-run should not create the directory
	if _, err := os.Stat(filepath.Dir(outPath)); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, `{"paths": {"/a": {"get": []}}}`)

	err := runRoot("generate", "--source", specPath, "--path", filepath.Join(dir, "types.ts"))
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	for _, want := range []string{"spec: ", "Location: " + specPath, "Pointer: #/paths/~1a/get"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got: %v", want, err)
		}
	}
}
