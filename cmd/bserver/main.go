// Command bserver is a minimal preload worker: it copies one stack's
// three sibling objects (data, idx, meta) from a source location to a
// preload target location, reporting Init -> Loading -> Loaded to the
// allocation service as it goes. spec.md declares the worker fleet's
// internal scheduling out of scope; this is a single-assignment,
// run-to-completion consumer of the stack format, not that scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/marmos91/stackhaus/internal/codec"
	"github.com/marmos91/stackhaus/internal/logger"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/telemetry"
	"github.com/marmos91/stackhaus/pkg/allocclient"
	"github.com/marmos91/stackhaus/pkg/config"
)

func main() {
	flags := flag.NewFlagSet("bserver", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file (default: $XDG_CONFIG_HOME/stackhaus/config.yaml)")
	assignmentID := flags.String("assignment-id", "", "preload assignment id to service (required)")
	stackID := flags.Uint64("stack-id", 0, "stack_id to copy (required)")
	source := flags.String("source", "", "source location, e.g. s3://bucket/prefix/ (required)")
	target := flags.String("target", "", "preload target location, e.g. file:///var/lib/stackhaus/preload/ (required)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	if *assignmentID == "" || *source == "" || *target == "" {
		fmt.Fprintln(os.Stderr, "usage: bserver --assignment-id <id> --stack-id <id> --source <url> --target <url>")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "bserver",
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() { _ = shutdownTelemetry(ctx) }()

	alloc := allocclient.New(cfg.Controller)

	if err := run(ctx, cfg, alloc, *assignmentID, *stackID, *source, *target); err != nil {
		logger.Error("preload failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, alloc *allocclient.Client, assignmentID string, stackID uint64, source, target string) (err error) {
	ctx, span := telemetry.StartAllocSpan(ctx, "bserver.preload", telemetry.AssignmentID(assignmentID), telemetry.StackID(stackID))
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		span.End()
	}()

	srcStore, srcPrefix, err := config.OpenPath(ctx, source, cfg.S3)
	if err != nil {
		return err
	}
	dstStore, dstPrefix, err := config.OpenPath(ctx, target, cfg.S3)
	if err != nil {
		return err
	}

	if err := alloc.UpdateAssignmentState(ctx, assignmentID, "Loading"); err != nil {
		return err
	}
	logger.Info("preload started", logger.StackID(stackID), logger.PreloadID(assignmentID))

	for _, ext := range []codec.Extension{codec.ExtIndex, codec.ExtMeta, codec.ExtData} {
		if err := copyObject(ctx, srcStore, dstStore, codec.ObjectKey(srcPrefix, stackID, ext), codec.ObjectKey(dstPrefix, stackID, ext)); err != nil {
			return err
		}
	}

	if err := alloc.UpdateAssignmentState(ctx, assignmentID, "Loaded"); err != nil {
		return err
	}
	logger.Info("preload complete", logger.StackID(stackID), logger.PreloadID(assignmentID))
	return nil
}

func copyObject(ctx context.Context, src, dst objectstore.ObjectStore, srcKey, dstKey string) error {
	r, err := src.StreamReader(ctx, srcKey, objectstore.Open())
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := dst.StreamWriter(ctx, dstKey)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
