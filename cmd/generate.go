package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vertextester/internal/adapter/inbound/picker"
	"vertextester/internal/adapter/outbound/notify"
	"vertextester/internal/adapter/outbound/process"
	"vertextester/internal/application/service"
	"vertextester/internal/config"
	"vertextester/internal/domain/errors/domain"
	"vertextester/internal/domain/valueobject"
	"vertextester/internal/port/inbound"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	pick           bool
	root           string
	output         string
	script         string
	credentialFile string
}

// newGenerateCmd implements: vertextester generate [--pick] [files...].
func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate tests for the selected source files",
		Long: `Launch one analyzer process per selected file and report each completion.

Files are taken from the arguments, or chosen interactively with --pick.
Every process receives <file> <output_dir> <api_key> as its last three
arguments and runs independently; a failing file never affects the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts, picker.New(cfg.Picker.Size))
		},
	}

	cmd.Flags().BoolVarP(&opts.pick, "pick", "p", false, "Choose files interactively")
	cmd.Flags().StringVar(&opts.root, "root", "", "Directory listed by --pick (default: picker.root)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: output.dir)")
	cmd.Flags().StringVar(&opts.script, "script", "", "Analyzer command prefix (default: dispatch.script)")
	cmd.Flags().StringVar(&opts.credentialFile, "credential-file", "", "API key file (default: credential.file)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts generateOptions, filePicker inbound.FilePicker) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := selectFiles(ctx, args, opts, filePicker)
	if err != nil {
		return err
	}

	outputDir, err := filepath.Abs(firstNonEmpty(opts.output, cfg.Output.Dir))
	if err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	dispatch := config.DispatchConfig{Script: firstNonEmpty(opts.script, cfg.Dispatch.Script)}

	metrics, err := service.NewDispatchMetrics(nil)
	if err != nil {
		return fmt.Errorf("failed to create dispatch metrics: %w", err)
	}

	dispatcher, err := service.NewBatchDispatcher(
		process.NewExecLauncher(),
		notify.NewConsole(cmd.OutOrStdout()),
		service.NewFileCredentialLoader(firstNonEmpty(opts.credentialFile, cfg.Credential.File)),
		dispatch.ScriptArgs(analyzeArgs(self)),
		service.WithDispatchMetrics(metrics),
	)
	if err != nil {
		return err
	}

	batch, err := dispatcher.Dispatch(ctx, service.BatchRequest{Files: files, OutputDir: outputDir})
	if errors.Is(err, domain.ErrEmptySelection) {
		return nil
	}
	if err != nil {
		return err
	}

	summary, err := batch.Wait(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d test files generated in %s\n",
		summary.Succeeded, summary.Total, outputDir)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}

// analyzeArgs invokes this executable's analyze command with the config file
// and log settings this process resolved, so every child sees the same
// configuration.
func analyzeArgs(self string) []string {
	args := []string{self}
	if cfgFileUsed != "" {
		args = append(args, "--config", cfgFileUsed)
	}
	return append(args, "--log-level", cfg.Log.Level, "--log-format", cfg.Log.Format, "analyze")
}

// selectFiles returns absolute paths from args, or from the picker when
// requested.
func selectFiles(ctx context.Context, args []string, opts generateOptions, filePicker inbound.FilePicker) ([]string, error) {
	selected := args
	if opts.pick {
		if len(args) > 0 {
			return nil, errors.New("--pick cannot be combined with file arguments")
		}
		picked, err := filePicker.Pick(ctx, firstNonEmpty(opts.root, cfg.Picker.Root), valueobject.SupportedExtensions())
		if err != nil {
			return nil, err
		}
		selected = picked
	}

	files := make([]string, 0, len(selected))
	for _, f := range selected {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("invalid file path %s: %w", f, err)
		}
		files = append(files, abs)
	}
	return files, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
