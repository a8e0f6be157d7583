// Package cmdutil provides shared utilities for stackctl commands.
package cmdutil

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/stackhaus/internal/cli/output"
	"github.com/marmos91/stackhaus/internal/cli/prompt"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/pkg/allocclient"
	"github.com/marmos91/stackhaus/pkg/config"
)

// Flags stores global flag values shared by every subcommand.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values set on the root command.
type GlobalFlags struct {
	ConfigPath string
	Controller string
	Output     string

	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool
}

// LoadConfig loads the on-disk configuration and overlays any global flags
// the caller set explicitly, following the same precedence the allocation
// daemon uses: flags beat file, file beats defaults.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if Flags.Controller != "" {
		cfg.Controller = Flags.Controller
	}
	if Flags.S3Region != "" {
		cfg.S3.Region = Flags.S3Region
	}
	if Flags.S3Endpoint != "" {
		cfg.S3.Endpoint = Flags.S3Endpoint
	}
	if Flags.S3AccessKeyID != "" {
		cfg.S3.AccessKeyID = Flags.S3AccessKeyID
	}
	if Flags.S3SecretAccessKey != "" {
		cfg.S3.SecretAccessKey = Flags.S3SecretAccessKey
	}
	if Flags.S3ForcePathStyle {
		cfg.S3.ForcePathStyle = true
	}

	return cfg, nil
}

// OpenPath resolves a CLI path argument into an ObjectStore and key prefix
// using the loaded configuration's S3 section for credentials.
func OpenPath(ctx context.Context, cfg *config.Config, path string) (objectstore.ObjectStore, string, error) {
	return config.OpenPath(ctx, path, cfg.S3)
}

// AllocClient returns an allocation-service client pointed at cfg's
// controller URL.
func AllocClient(cfg *config.Config) *allocclient.Client {
	return allocclient.New(cfg.Controller)
}

// HandleAbort returns nil if err indicates the user cancelled a prompt
// (Ctrl+C), printing a short notice; otherwise it returns err unchanged.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\naborted")
		return nil
	}
	return err
}

// GetOutputFormatParsed returns the parsed output format from the global flag.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// PrintOutput prints data in the configured format. For table format, it
// displays emptyMsg if data is empty, otherwise renders tableRenderer.
func PrintOutput(data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, data)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, data)
	default:
		if isEmpty {
			fmt.Println(emptyMsg)
			return nil
		}
		return output.PrintTable(os.Stdout, tableRenderer)
	}
}
