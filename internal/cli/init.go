package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/STNeto1/openapi-gen/internal/config"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath  string
	Force       bool
	Interactive bool
	Verbose     bool
}

var (
	initRunner = runInit
	// initPrompt fills cfg interactively; replaced in tests.
	initPrompt = promptInitConfig
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter api-gen.json",
		Long: "Write a starter api-gen.json with a placeholder source and the default output path. " +
			"Use --interactive to fill in the values from prompts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			if strings.TrimSpace(out) == "" {
				if out, err = cmd.Flags().GetString("config"); err != nil {
					return err
				}
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			interactive, err := cmd.Flags().GetBool("interactive")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath:  out,
				Force:       force,
				Interactive: interactive,
				Verbose:     verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "", "Where to write the config file (defaults to --config)")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")
	cmd.Flags().BoolP("interactive", "i", false, "Prompt for the source and output path")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = config.DefaultFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	fileCfg := config.Default()
	if cfg.Interactive {
		if err := initPrompt(fileCfg); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return newUsageError("init: aborted")
			}
			return fmt.Errorf("init: prompt: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := fileCfg.Save(tmp); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}

	fields := []resultField{
		{Label: "Source", Value: fileCfg.Source},
		{Label: "Path", Value: fileCfg.Path},
	}
	msg := "Wrote config to " + absPath
	if fileCfg.Source == config.PlaceholderSource {
		msg += "\nSet \"source\" before running api-gen generate."
	}
	printResult(os.Stdout, fields, msg)
	return nil
}

func promptInitConfig(cfg *config.Config) error {
	source := ""
	if cfg.Source != config.PlaceholderSource {
		source = cfg.Source
	}
	path := cfg.Path
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Swagger/OpenAPI document").
				Description("File path or http(s) URL").
				Placeholder("https://petstore.swagger.io/v2/swagger.json").
				Validate(requiredValidator("source")).
				Value(&source),
			huh.NewInput().
				Title("Output file").
				Placeholder(config.DefaultPath).
				Validate(requiredValidator("output file")).
				Value(&path),
		),
	).WithTheme(theme()).Run()
	if err != nil {
		return err
	}
	cfg.Source = strings.TrimSpace(source)
	cfg.Path = strings.TrimSpace(path)
	return nil
}

func requiredValidator(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
