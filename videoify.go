// Package videoify wires the conversion pipeline behind the command line
// interface.
package videoify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/worldEngineDev/mcap-videoify/pkg/encoder"
	"github.com/worldEngineDev/mcap-videoify/pkg/log"
	"github.com/worldEngineDev/mcap-videoify/pkg/mcapio"
	"github.com/worldEngineDev/mcap-videoify/pkg/transcode"
)

const defaultOutputPath = "compressed_video.mcap"

type options struct {
	inputPath  string
	outputPath string
	configPath string
	bitrate    int
	silent     bool
	warmUp     bool
	help       bool
}

// ErrMissingValue a flag that takes a value was passed without one.
var ErrMissingValue = errors.New("missing value")

// ErrNoInput no input file was specified.
var ErrNoInput = errors.New("no input file specified. Use --input/-i to specify input file")

func parseArgs(args []string) (*options, error) {
	opts := options{outputPath: defaultOutputPath}

	value := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%w for %v argument", ErrMissingValue, args[i])
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); {
		switch args[i] {
		case "--input", "-i":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			opts.inputPath = v
			i += 2
		case "--output", "-o":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			opts.outputPath = v
			i += 2
		case "--bitrate":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			bitrate, err := strconv.Atoi(v)
			if err != nil || bitrate <= 0 {
				return nil, fmt.Errorf("invalid value for --bitrate: %v", v)
			}
			opts.bitrate = bitrate
			i += 2
		case "--config":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			opts.configPath = v
			i += 2
		case "--silent":
			opts.silent = true
			i++
		case "--warm-up":
			opts.warmUp = true
			i++
		case "--help", "-h":
			opts.help = true
			i++
		default:
			return nil, fmt.Errorf("unexpected argument: %v\n\n%v", args[i], usage())
		}
	}

	return &opts, nil
}

func usage() string {
	options := []struct{ flag, desc string }{
		{"-i, --input <FILE>", "Input MCAP file path (required)"},
		{"-o, --output <FILE>", "Output MCAP file path (default: " + defaultOutputPath + ")"},
		{"--bitrate <BPS>", "Video bitrate target in bits per second (default: 10000000)"},
		{"--config <FILE>", "Optional YAML file with encode settings"},
		{"--silent", "Disable verbose output. Errors will still be printed."},
		{"--warm-up", "Warm up the encoder stack and exit (for CI/Docker)"},
		{"-h, --help", "Show this help message"},
	}

	maxLen := 0
	for _, opt := range options {
		if len(opt.flag) > maxLen {
			maxLen = len(opt.flag)
		}
	}

	b := &strings.Builder{}
	b.WriteString("mcap-videoify - Convert MCAP files containing image data to compressed video\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  mcap-videoify [OPTIONS]\n\n")
	b.WriteString("Options:\n")
	for _, opt := range options {
		fmt.Fprintf(b, "  %-*v  %v\n", maxLen, opt.flag, opt.desc)
	}
	b.WriteString("\nDescription:\n")
	b.WriteString("  This tool processes MCAP files containing image data and converts them to\n")
	b.WriteString("  compressed H.264 video streams. It preserves the original message timing\n")
	b.WriteString("  and metadata while significantly reducing file size through video compression.")

	return b.String()
}

// Run parses the command line and executes one conversion pass.
func Run() error {
	return run(os.Args[1:], os.Stdout, os.Stderr, encoder.NewH264)
}

func run(args []string, stdout, stderr io.Writer, newEncoder encoder.NewEncoderFunc) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	if opts.help {
		fmt.Fprintln(stdout, usage())
		return nil
	}

	// Warm up sequence. Intended for CI and Docker builds.
	if opts.warmUp {
		fmt.Fprintln(stdout, "mcap-videoify and the underlying encoder stack has been warmed up.")
		return nil
	}

	if opts.inputPath == "" {
		return ErrNoInput
	}

	config := encoder.DefaultConfig()
	if opts.configPath != "" {
		rawYAML, err := os.ReadFile(opts.configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		config, err = encoder.NewConfig(rawYAML)
		if err != nil {
			return err
		}
	}
	if opts.bitrate != 0 {
		config.BitrateBps = opts.bitrate
	}

	minLevel := log.LevelInfo
	if opts.silent {
		minLevel = log.LevelWarning
	}
	logger := log.NewLogger(stderr, minLevel)

	source, err := mcapio.OpenSource(opts.inputPath)
	if err != nil {
		return err
	}
	defer source.Close()

	sink, err := mcapio.CreateSink(opts.outputPath)
	if err != nil {
		return err
	}

	driver, err := transcode.NewDriver(source, sink, logger, newEncoder, config)
	if err != nil {
		sink.Abort()
		return err
	}

	if err := driver.Run(); err != nil {
		// Finalization is skipped, the partial output is not valid.
		sink.Abort()
		return err
	}

	logger.Info().Src("app").Msgf("wrote %v", opts.outputPath)
	return nil
}
