// Command nanoedge encodes sensor readings and trains a pattern memory from
// the shell.
//
// Usage:
//
//	nanoedge encode 512                        Encode one reading per channel
//	nanoedge encode --min=-100 --max=100 -- -5 Encode a signed reading
//	nanoedge learn --label idle 100 / 120      Learn a two-frame pattern
//	nanoedge classify 110 / 118                Classify readings
//	nanoedge distance HEX HEX                  Compare two encoded vectors
//	nanoedge labels                            List learned labels
//	nanoedge forget LABEL                      Remove a label
//	nanoedge init-config                       Write a default config file
//
// Frames are separated by a lone "/" argument; each frame carries one reading
// per configured channel.
package main

import (
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Amansingh-afk/nanoedge"
	"github.com/Amansingh-afk/nanoedge/config"
	"github.com/Amansingh-afk/nanoedge/store"
)

type globalOptions struct {
	Config    string `long:"config" short:"c" description:"path to the YAML config file" default:"nanoedge.yaml"`
	LogLevel  string `long:"log-level" description:"override log.level from the config"`
	LogFormat string `long:"log-format" description:"override log.format from the config" choice:"text" choice:"json"`
}

var (
	opts   globalOptions
	stdout io.Writer = os.Stdout
)

func main() {
	parser := newParser()
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("encode", "Encode readings into a hypervector",
		"Encodes one frame or a '/'-separated sequence of frames. With --min and --max a single signed reading is encoded.",
		&encodeCommand{})
	parser.AddCommand("learn", "Learn readings under a label", "", &learnCommand{})
	parser.AddCommand("classify", "Classify readings against learned labels", "", &classifyCommand{})
	parser.AddCommand("distance", "Hamming distance between two hex-encoded vectors", "", &distanceCommand{})
	parser.AddCommand("labels", "List learned labels, most recent first", "", &labelsCommand{})
	parser.AddCommand("forget", "Remove a learned label", "", &forgetCommand{})
	parser.AddCommand("init-config", "Write a default config file if none exists", "", &initConfigCommand{})
	return parser
}

// setup loads the config and builds the logger and engine it describes.
func setup() (*config.Config, *logrus.Logger, *nanoedge.Engine, error) {
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	eng, err := nanoedge.FromConfig(cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, eng, nil
}

func newLogger(lc config.LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	if lc.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return logger, nil
}

// withStore opens the configured store, loads it into eng and runs fn.
// When save is set the engine's memory is written back afterwards.
func withStore(cfg *config.Config, logger logrus.FieldLogger, eng *nanoedge.Engine, save bool, fn func() error) error {
	s, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := eng.Load(s); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	if save {
		return eng.Save(s)
	}
	return nil
}
