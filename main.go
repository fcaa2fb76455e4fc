package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bandock/bandchip-assembler/assembler"
	"github.com/Bandock/bandchip-assembler/chip8"
	"github.com/Bandock/bandchip-assembler/config"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v0.7"
var Version = "0.6"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		outputPath  string
		configPath  string
		showVersion bool
	)

	retcode := 0

	rootCmd := &cobra.Command{
		Use:           "bandchip-assembler <input> -o <output>",
		Short:         "BandCHIP assembler — assemble CHIP-8 family sources to machine code",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if showVersion {
				fmt.Printf("BandCHIP Assembler V%s\n", Version)
				return
			}
			retcode = assemble(args, outputPath, configPath)
		},
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: platform config dir)")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}
	return retcode
}

// assemble is the thin adapter around the core: it opens the input, runs
// the assembler, reports diagnostics, and writes the image only when the
// error count is zero.
func assemble(args []string, outputPath, configPath string) int {
	fmt.Printf("BandCHIP Assembler V%s\n\n", Version)

	if len(args) == 0 && outputPath == "" {
		fmt.Printf("Format:  bandchip_assembler <input> -o <output>\n\n")
		return 0
	}
	if len(args) == 0 {
		fmt.Printf("You need to specify an input file.\n\n")
		return -1
	}
	inputPath := args[0]

	inputFile, err := os.Open(inputPath) // #nosec G304 -- user-provided source path
	if err != nil {
		fmt.Printf("Unable to open '%s'.\n\n", inputPath)
		return -1
	}
	defer inputFile.Close()

	if outputPath == "" {
		fmt.Printf("You need to specify an output file.\n\n")
		return -1
	}
	if outputPath == inputPath {
		fmt.Printf("Do not specify the output file as the input file.\n\n")
		return -1
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return -1
	}

	fmt.Printf("Attempting to assemble %s to %s...\n", inputPath, outputPath)

	asm := assembler.New(optionsFromConfig(cfg))
	asm.Assemble(inputFile)

	for _, warn := range asm.Errors().Warnings {
		fmt.Println(warn.String())
	}
	for _, asmErr := range asm.Errors().Errors {
		fmt.Println(asmErr.Error())
	}

	errorCount := asm.ErrorCount()
	if errorCount == 0 {
		if err := writeImage(asm, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Unable to write '%s': %v\n", outputPath, err)
			return -1
		}
		fmt.Printf("Assembly successful!\n")
	}

	if errorCount == 1 {
		fmt.Printf("\nThere was 1 error.\n")
	} else {
		fmt.Printf("\nThere were %d errors.\n", errorCount)
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func optionsFromConfig(cfg *config.Config) assembler.Options {
	opts := assembler.Options{}

	if ext, ok := chip8.ParseExtension(strings.ToUpper(cfg.Assembler.Extension)); ok {
		opts.Extension = ext
	}
	if strings.EqualFold(cfg.Assembler.OutputFormat, "hexasciistring") {
		opts.Output = assembler.HexASCIIString
	}
	opts.AlignOff = !cfg.Assembler.Align
	if !cfg.Assembler.Verbose {
		opts.Console = io.Discard
	}
	return opts
}

func writeImage(asm *assembler.Assembler, path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path
	if err != nil {
		return err
	}
	defer f.Close()
	return asm.WriteTo(f)
}
