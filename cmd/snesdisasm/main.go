package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/audio"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/pipeline"
	cli "github.com/urfave/cli/v2"
)

func loadROM(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return rom.StripCopierHeader(data), nil
}

func parseSeeds(csv string) ([]rom.Address, error) {
	if csv == "" {
		return nil, nil
	}
	var out []rom.Address
	for _, part := range strings.Split(csv, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse seed address %q: %w", part, err)
		}
		out = append(out, rom.Address(v))
	}
	return out, nil
}

func parseHints(specs []string) (map[rom.Address]string, error) {
	hints := make(map[rom.Address]string)
	for _, spec := range specs {
		parts := strings.SplitN(spec, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("define %q must be in address=name form", spec)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse define address %q: %w", parts[0], err)
		}
		hints[rom.Address(v)] = parts[1]
	}
	return hints, nil
}

func cancelContext(c *cli.Context) (context.Context, context.CancelFunc) {
	if after := c.Duration("cancel-after"); after > 0 {
		return context.WithTimeout(context.Background(), after)
	}
	return context.WithCancel(context.Background())
}

func runPipeline(c *cli.Context, file string) (*pipeline.Result, error) {
	data, err := loadROM(file)
	if err != nil {
		return nil, err
	}

	seeds, err := parseSeeds(c.String("seed"))
	if err != nil {
		return nil, err
	}
	hints, err := parseHints(c.StringSlice("define"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := cancelContext(c)
	defer cancel()

	return pipeline.Run(ctx, data, pipeline.Options{Seeds: seeds, SymbolHints: hints})
}

func infoCmd(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("Insufficient arguments", 1)
	}

	result, err := runPipeline(c, args.First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	cart := result.Cartridge
	fmt.Printf("Cartridge Type  %s\n", cart.Type)
	fmt.Printf("Map Mode        0x%02X\n", cart.MapMode)
	fmt.Printf("ROM Size        %d KB\n", cart.ROMSizeKB)
	fmt.Printf("SRAM Size       %d KB\n", cart.SRAMSizeKB)
	fmt.Printf("Speed           %s\n", cart.Speed)
	fmt.Printf("Battery         %v\n", cart.Battery)
	fmt.Printf("RTC             %v\n", cart.RTC)
	fmt.Println()
	fmt.Printf("Functions       %d\n", result.Metrics.FunctionCount)
	fmt.Printf("Total Instrs    %d\n", result.Metrics.TotalInstructions)
	fmt.Printf("Code Bytes      %d\n", result.Metrics.CodeBytes)
	fmt.Printf("Avg Fn Size     %.1f\n", result.Metrics.AverageFunctionSize)
	fmt.Printf("Indirect Jumps  %d\n", result.Metrics.IndirectJumps)
	fmt.Printf("Subroutine Calls %d\n", result.Metrics.SubroutineCalls)
	fmt.Printf("Potential Bugs  %d\n", len(result.Metrics.PotentialBugs))
	for _, b := range result.Metrics.PotentialBugs {
		fmt.Printf("  [%s] %06X %s: %s\n", b.Severity, uint32(b.Addr), b.Kind, b.Detail)
	}

	return nil
}

func disasmCmd(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("Insufficient arguments", 1)
	}

	result, err := runPipeline(c, args.First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	for _, l := range result.Lines {
		label := result.Enrichment.Labels[l.Addr]
		line := fmt.Sprintf("%06X  %-24s %s", uint32(l.Addr), label, l.Text())
		if comments := result.Enrichment.Comments[l.Addr]; len(comments) > 0 {
			line += " ; " + strings.Join(comments, "; ")
		}
		fmt.Println(line)
	}

	if result.Partial {
		fmt.Fprintln(os.Stderr, "warning: run was cancelled; output is partial")
	}

	return nil
}

func exportSPCCmd(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("Insufficient arguments", 1)
	}

	result, err := runPipeline(c, args.First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := c.String("out")
	if out == "" {
		out = "out.spc"
	}

	data := audio.ExportSPC(result.Audio.State, nil)
	if err := audio.ValidateSPC(data); err != nil {
		return cli.Exit(fmt.Errorf("exported SPC failed its own validator: %w", err), 1)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "snesdisasm"
	app.Usage = "Static disassembler and analyzer for SNES ROM images"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	seedFlag := &cli.StringFlag{
		Name:  "seed",
		Usage: "comma-separated additional CPU seed addresses",
	}
	defineFlag := &cli.StringSliceFlag{
		Name:  "define",
		Usage: "address=name symbol hint, may be repeated",
	}
	cancelFlag := &cli.DurationFlag{
		Name:  "cancel-after",
		Usage: "cancel the run after this duration (demonstrates cooperative cancellation)",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print cartridge info and quality metrics without a full listing",
			ArgsUsage: "rom",
			Action:    infoCmd,
			Flags:     []cli.Flag{seedFlag, defineFlag, cancelFlag},
		},
		{
			Name:      "disasm",
			Aliases:   []string{"d"},
			Usage:     "Disassemble a ROM to a labeled, commented listing",
			ArgsUsage: "rom",
			Action:    disasmCmd,
			Flags:     []cli.Flag{seedFlag, defineFlag, cancelFlag},
		},
		{
			Name:      "export-spc",
			Usage:     "Export the traced audio state as a standalone .spc file",
			ArgsUsage: "rom",
			Action:    exportSPCCmd,
			Flags: []cli.Flag{seedFlag, defineFlag, cancelFlag,
				&cli.StringFlag{Name: "out", Usage: "output .spc path"},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
