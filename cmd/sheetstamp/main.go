package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"sheetstamp/pkg/config"
	"sheetstamp/pkg/stamping"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Black-and-white bitmap; black pixels are punched through")
	configPath := flag.String("config", "sheetstamp.yaml", "YAML configuration file (defaults are used if it does not exist)")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	outputDir := flag.String("output-dir", "", "Directory for the generated forms (default: next to the input)")
	format := flag.String("format", "png", "Output format: png or tiff")
	depth := flag.Float64("depth", 2.0, "Punch out depth in mm")
	thickness := flag.Float64("thickness", 0.7, "Sheet thickness in mm")
	fade := flag.Float64("fade", 4.5, "Fade distance of the punch slope in mm")
	ppm := flag.Float64("ppm", 10.0, "Resolution in pixels per mm")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of rows computed in parallel (default: all available)")
	threshold := flag.Uint("threshold", 0, "Treat input samples below this 16-bit value as black (0: only exact black)")
	mirrorNegative := flag.Bool("mirror-negative", true, "Write the negative form mirrored left to right")
	invertPositive := flag.Bool("invert-positive", false, "Write the positive form inverted (rest plane at 0 instead of full white)")
	profileRow := flag.Int("profile-row", -1, "Plot a cross-section of this row (negative: disabled)")
	verbose := flag.Bool("verbose", false, "Log progress at debug level")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	if *inputPath == "" && flag.NArg() == 1 {
		*inputPath = flag.Arg(0)
	}
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "format":
			cfg.Output.Format = *format
		case "depth":
			cfg.Forming.PunchOutDepth = *depth
		case "thickness":
			cfg.Forming.SheetThickness = *thickness
		case "fade":
			cfg.Forming.FadeDistance = *fade
		case "ppm":
			cfg.Forming.PixelsPerMM = *ppm
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "threshold":
			cfg.Processing.Threshold = uint16(min(*threshold, 0xffff))
		case "mirror-negative":
			cfg.Output.MirrorNegative = *mirrorNegative
		case "invert-positive":
			cfg.Output.InvertPositive = *invertPositive
		case "profile-row":
			cfg.Output.ProfileRow = *profileRow
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	outFormat, err := cfg.OutputFormat()
	if err != nil {
		log.Fatalf("Invalid output format: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	if *quiet {
		level = slog.LevelWarn
	}
	stamping.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	params := &stamping.Params{
		InputPath:      *inputPath,
		OutputDir:      cfg.Output.Dir,
		Format:         outFormat,
		Forming:        cfg.Params(),
		NumCores:       cfg.Processing.NumCores,
		Threshold:      cfg.Processing.Threshold,
		MirrorNegative: cfg.Output.MirrorNegative,
		InvertPositive: cfg.Output.InvertPositive,
		ProfileRow:     cfg.Output.ProfileRow,
	}

	if !*quiet {
		fmt.Println("================================")
		fmt.Println("SHEET METAL STAMPING FORM GENERATOR")
		fmt.Println("================================")
		fmt.Printf("Punch out depth: %.2f mm, sheet thickness: %.2f mm\n", params.Forming.PunchOutDepth, params.Forming.SheetThickness)
		fmt.Printf("Fade distance: %.2f mm at %.1f pixels/mm\n", params.Forming.FadeDistance, params.Forming.PixelsPerMM)
	}

	stamper := stamping.NewStamper(params)

	startTime := time.Now()
	if err := stamper.Process(); err != nil {
		log.Fatalf("Stamping failed: %v", err)
	}
	processingTime := time.Since(startTime)

	if *quiet {
		return
	}

	m := stamper.GetMetrics()
	paths := stamper.Paths()
	fmt.Printf("\nForms generated in %.2f seconds using %d cores\n", processingTime.Seconds(), params.NumCores)
	fmt.Printf("Negative form: %s\n", paths.Negative)
	fmt.Printf("Positive form: %s\n", paths.Positive)
	if params.ProfileRow >= 0 {
		fmt.Printf("Profile:       %s\n", paths.Profile)
	}

	fmt.Printf("\nForm statistics (%dx%d px)\n", m.Width, m.Height)
	fmt.Printf("=======================================\n")
	fmt.Printf("Marked pixels: %.2f%%\n", m.MarkedFraction*100)
	fmt.Printf("Negative: min %.3f mm, max %.3f mm, mean %.3f mm, stddev %.3f mm\n",
		m.Negative.Min, m.Negative.Max, m.Negative.Mean, m.Negative.StdDev)
	fmt.Printf("Positive: min %.3f mm, max %.3f mm, mean %.3f mm, stddev %.3f mm\n",
		m.Positive.Min, m.Positive.Max, m.Positive.Mean, m.Positive.StdDev)
	fmt.Printf("Max die lift over punch: %.3f mm\n", m.MaxLift)
}
