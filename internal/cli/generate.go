package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/STNeto1/openapi-gen/internal/config"
	"github.com/STNeto1/openapi-gen/internal/emitter/tsemitter"
	genspec "github.com/STNeto1/openapi-gen/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Source          string
	Path            string
	IncludeTags     []string
	ExcludeTags     []string
	Methods         []string
	PathPatterns    []string
	UniformOptional bool
	ConfigPath      string
	DryRun          bool
	Verbose         bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Path: config.DefaultPath}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Generate the TypeScript client described by api-gen.json",
		Long: "Generate TypeScript types and client functions from a Swagger/OpenAPI document. " +
			"Options come from api-gen.json and can be overridden with flags.",
		Example: strings.TrimSpace(`  api-gen generate
  api-gen g --source https://petstore.swagger.io/v2/swagger.json --path src/api.ts
  api-gen --config ./configs/api-gen.json generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("source", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("path", "", "Where to write the generated TypeScript file")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include these HTTP methods (get,post,put,delete,patch)")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.Bool("uniform-optional", false, "Render parameters without `required` like `required: false`")
	flags.Bool("dry-run", false, "Render without writing the output file")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		explicit := cmd.Flags().Changed("config")
		if err := applyGenerateConfigFromFile(&cfg, configPath, explicit); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyGenerateConfigFromFile merges the config file into cfg. A missing file
// is only an error when its path was given explicitly.
func applyGenerateConfigFromFile(cfg *GenerateConfig, path string, explicit bool) error {
	fileCfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	cfg.ConfigPath = path
	if fileCfg.Source != config.PlaceholderSource {
		cfg.Source = fileCfg.Source
	}
	if fileCfg.Path != "" {
		cfg.Path = fileCfg.Path
	}
	cfg.IncludeTags = fileCfg.IncludeTags
	cfg.ExcludeTags = fileCfg.ExcludeTags
	cfg.Methods = fileCfg.Methods
	cfg.PathPatterns = fileCfg.PathPatterns
	cfg.UniformOptional = fileCfg.UniformOptional
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := map[string]*string{
		"source": &cfg.Source,
		"path":   &cfg.Path,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	sliceFlags := map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.PathPatterns,
	}
	for name, dst := range sliceFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	boolFlags := map[string]*bool{
		"uniform-optional": &cfg.UniformOptional,
		"dry-run":          &cfg.DryRun,
		"verbose":          &cfg.Verbose,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Source = strings.TrimSpace(c.Source)
	c.Path = strings.TrimSpace(c.Path)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.PathPatterns = sanitizeTags(c.PathPatterns)
	methods := sanitizeTags(c.Methods)
	for i, m := range methods {
		methods[i] = strings.ToLower(m)
	}
	c.Methods = methods
}

func (c *GenerateConfig) validate() error {
	fileCfg := config.Config{
		Source:  c.Source,
		Path:    c.Path,
		Methods: c.Methods,
	}
	switch err := fileCfg.Validate(); {
	case errors.Is(err, config.ErrSourceNotSet):
		return newUsageError("generate: source is required (set --source or \"source\" in " + config.DefaultFile + ")")
	case errors.Is(err, config.ErrPathNotSet):
		return newUsageError("generate: path is required (set --path or \"path\" in " + config.DefaultFile + ")")
	case err != nil:
		return newUsageError("generate: " + strings.TrimPrefix(err.Error(), "config: "))
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func (c *GenerateConfig) filters() []genspec.FilterOption {
	methods := make([]genspec.HttpMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, genspec.HttpMethod(m))
	}
	return []genspec.FilterOption{
		genspec.WithIncludeTags(c.IncludeTags),
		genspec.WithExcludeTags(c.ExcludeTags),
		genspec.WithMethods(methods),
		genspec.WithPathPatterns(c.PathPatterns),
	}
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(os.Stderr, cfg.Verbose)

	// 1) Load and decode the document (file or http/https URL)
	logger.Debug("loading document", "source", cfg.Source)
	doc, diags, err := genspec.LoadDocument(ctx, cfg.Source)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			return newUsageError(specErrorMessage(se))
		}
		return err
	}
	for _, d := range diags {
		logger.Warn(d.Message, "code", string(d.Code), "pointer", d.Pointer)
	}

	// 2) Apply tag, method and path filters
	doc = genspec.Filter(doc, cfg.filters()...)
	logger.Debug("document ready", "definitions", len(doc.Definitions), "paths", len(doc.Paths))

	// 3) Emit the client
	res, err := tsemitter.Emit(ctx, doc, tsemitter.Options{
		OutPath:         cfg.Path,
		Source:          cfg.Source,
		DryRun:          cfg.DryRun,
		UniformOptional: cfg.UniformOptional,
		Logger:          logger,
	})
	if err != nil {
		return wrapOutputError(err, cfg.Path)
	}

	printGenerateResult(os.Stdout, res, len(diags)+len(res.Diagnostics), cfg.DryRun)
	return nil
}

func newLogger(w *os.File, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func specErrorMessage(se *genspec.SpecError) string {
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return msg
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "write temp") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --path or check directory permissions.", out, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
