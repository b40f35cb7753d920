package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/ydb-platform/vdi/internal/pkg/blockdev"
	"github.com/ydb-platform/vdi/internal/pkg/logging"
	"github.com/ydb-platform/vdi/internal/pkg/vdi"
)

////////////////////////////////////////////////////////////////////////////////

type options struct {
	Size    uint64
	Static  bool
	Verbose bool
}

func newContext(opts *options) context.Context {
	level := logging.InfoLevel
	if opts.Verbose {
		level = logging.DebugLevel
	}

	return logging.SetLogger(
		context.Background(),
		logging.NewStderrLogger(level),
	)
}

func newRegistry() (*blockdev.Registry, error) {
	registry := blockdev.NewRegistry()

	err := registry.Register(vdi.NewDriver(nil, nil))
	if err != nil {
		return nil, err
	}

	return registry, nil
}

////////////////////////////////////////////////////////////////////////////////

func runCreate(ctx context.Context, path string, opts *options) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	driver, _ := registry.Lookup(vdi.FormatName)

	createOptions := map[string]string{
		"size": fmt.Sprintf("%v", opts.Size),
	}
	if opts.Static {
		createOptions["static"] = "true"
	}

	return driver.Create(ctx, path, createOptions)
}

func runInfo(ctx context.Context, path string, opts *options) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	driver, _ := registry.Lookup(vdi.FormatName)

	image, err := driver.Open(ctx, path, os.O_RDONLY)
	if err != nil {
		return err
	}
	defer image.Close(ctx)

	header := image.(*vdi.Image).Header()

	fmt.Printf("text:              %v\n", header.TextString())
	fmt.Printf("image type:        %v\n", header.ImageType)
	fmt.Printf("description:       %v\n", header.DescriptionString())
	fmt.Printf("disk size:         %v\n", header.DiskSize)
	fmt.Printf("block size:        %v\n", header.BlockSize)
	fmt.Printf("blocks in image:   %v\n", header.BlocksInImage)
	fmt.Printf("blocks allocated:  %v\n", header.BlocksAllocated)
	fmt.Printf("total sectors:     %v\n", image.TotalSectors())
	return nil
}

func runCheck(ctx context.Context, path string, opts *options) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	driver, _ := registry.Lookup(vdi.FormatName)

	image, err := driver.Open(ctx, path, os.O_RDONLY)
	if err != nil {
		return err
	}
	defer image.Close(ctx)

	errorCount := image.Check(ctx)
	if errorCount != 0 {
		return fmt.Errorf("found %v consistency violations", errorCount)
	}

	fmt.Println("no violations found")
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "vdi-util",
		Short: "Inspect and manage VDI images",
	}

	rootCmd.PersistentFlags().BoolVar(
		&opts.Verbose,
		"verbose",
		false,
		"enables debug logging",
	)

	createCmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Create a new image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(newContext(&opts), args[0], &opts)
		},
	}

	createCmd.Flags().Uint64Var(
		&opts.Size,
		"size",
		0,
		"virtual disk size in bytes",
	)

	createCmd.Flags().BoolVar(
		&opts.Static,
		"static",
		false,
		"pre-allocate all blocks at create time",
	)

	infoCmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Print header fields of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(newContext(&opts), args[0], &opts)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Audit the consistency of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(newContext(&opts), args[0], &opts)
		},
	}

	rootCmd.AddCommand(createCmd, infoCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("can't execute root command: %v", err)
	}
}
