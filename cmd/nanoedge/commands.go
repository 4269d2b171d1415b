package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Amansingh-afk/nanoedge/config"
	"github.com/Amansingh-afk/nanoedge/hdc"
)

const frameSeparator = "/"

// parseFrames splits readings into frames on lone "/" arguments.
func parseFrames(args []string) ([][]uint16, error) {
	if len(args) == 0 {
		return nil, errors.New("no readings given")
	}
	frames := [][]uint16{nil}
	for _, arg := range args {
		if arg == frameSeparator {
			frames = append(frames, nil)
			continue
		}
		n, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %q", arg)
		}
		last := len(frames) - 1
		frames[last] = append(frames[last], uint16(n))
	}
	for i, f := range frames {
		if len(f) == 0 {
			return nil, errors.Errorf("frame %d is empty", i)
		}
	}
	return frames, nil
}

func printVector(v hdc.Vector) error {
	text, err := v.MarshalText()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n%s\n", v, text)
	return err
}

type encodeCommand struct {
	Min *int16 `long:"min" description:"lower bound of a signed reading range"`
	Max *int16 `long:"max" description:"upper bound of a signed reading range"`
}

func (c *encodeCommand) Execute(args []string) error {
	if c.Min != nil || c.Max != nil {
		return c.executeBounded(args)
	}

	_, _, eng, err := setup()
	if err != nil {
		return err
	}
	frames, err := parseFrames(args)
	if err != nil {
		return err
	}
	v, err := eng.EncodeFrames(frames...)
	if err != nil {
		return err
	}
	return printVector(v)
}

func (c *encodeCommand) executeBounded(args []string) error {
	switch {
	case c.Min == nil || c.Max == nil:
		return errors.New("--min and --max must be given together")
	case *c.Max <= *c.Min:
		return errors.Errorf("--max (%d) must be greater than --min (%d)", *c.Max, *c.Min)
	case len(args) != 1:
		return errors.Errorf("bounded encoding takes exactly one reading, got %d", len(args))
	}
	n, err := strconv.ParseInt(args[0], 10, 16)
	if err != nil {
		return errors.Wrapf(err, "reading %q", args[0])
	}
	return printVector(hdc.EncodeBounded(int16(n), *c.Min, *c.Max))
}

type learnCommand struct {
	Label string `long:"label" short:"l" description:"label to learn the readings under" required:"true"`
}

func (c *learnCommand) Execute(args []string) error {
	frames, err := parseFrames(args)
	if err != nil {
		return err
	}
	cfg, logger, eng, err := setup()
	if err != nil {
		return err
	}
	return withStore(cfg, logger, eng, true, func() error {
		if err := eng.Learn(c.Label, frames...); err != nil {
			return err
		}
		logger.WithField("label", c.Label).WithField("labels", eng.Len()).Info("learned pattern")
		return nil
	})
}

type classifyCommand struct{}

func (c *classifyCommand) Execute(args []string) error {
	frames, err := parseFrames(args)
	if err != nil {
		return err
	}
	cfg, logger, eng, err := setup()
	if err != nil {
		return err
	}
	return withStore(cfg, logger, eng, false, func() error {
		label, ok, sim, err := eng.Classify(frames...)
		if err != nil {
			return err
		}
		if !ok {
			_, err = fmt.Fprintln(stdout, "no match")
			return err
		}
		_, err = fmt.Fprintf(stdout, "%s similarity=%d/%d\n", label, sim, hdc.Dims)
		return err
	})
}

type distanceCommand struct {
	Args struct {
		A string `positional-arg-name:"A" description:"hex-encoded vector"`
		B string `positional-arg-name:"B" description:"hex-encoded vector"`
	} `positional-args:"yes" required:"yes"`
}

func (c *distanceCommand) Execute([]string) error {
	var a, b hdc.Vector
	if err := a.UnmarshalText([]byte(c.Args.A)); err != nil {
		return errors.Wrap(err, "first vector")
	}
	if err := b.UnmarshalText([]byte(c.Args.B)); err != nil {
		return errors.Wrap(err, "second vector")
	}
	_, err := fmt.Fprintf(stdout, "hamming=%d similarity=%d\n", hdc.Hamming(a, b), hdc.Similarity(a, b))
	return err
}

type labelsCommand struct{}

func (c *labelsCommand) Execute([]string) error {
	cfg, logger, eng, err := setup()
	if err != nil {
		return err
	}
	return withStore(cfg, logger, eng, false, func() error {
		for _, e := range eng.Memory().Snapshot() {
			if _, err := fmt.Fprintf(stdout, "%s\tcount=%d\n", e.Label, e.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

type forgetCommand struct {
	Args struct {
		Label string `positional-arg-name:"LABEL"`
	} `positional-args:"yes" required:"yes"`
}

func (c *forgetCommand) Execute([]string) error {
	cfg, logger, eng, err := setup()
	if err != nil {
		return err
	}
	return withStore(cfg, logger, eng, true, func() error {
		if !eng.Forget(c.Args.Label) {
			return errors.Errorf("unknown label %q", c.Args.Label)
		}
		return nil
	})
}

type initConfigCommand struct{}

func (c *initConfigCommand) Execute([]string) error {
	if err := config.InitConfig(opts.Config); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout, "config at %s\n", opts.Config)
	return err
}
