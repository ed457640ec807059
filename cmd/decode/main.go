// One-shot decoder: reads telemetry lines from stdin (or -f FILE) and writes
// one JSON frame per decodable line to stdout. Lines without a frame are
// skipped unless -empty is set, in which case "{}" is written in their place.
// With -check every emitted frame is decoded again from its JSON and compared.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"

	"SerialNode/internal/device"
	"SerialNode/internal/parser"
	"SerialNode/internal/util"

	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("f", "", "read lines from file instead of stdin")
	empty := flag.Bool("empty", false, "emit {} for lines that yield no frame")
	check := flag.Bool("check", false, "verify every emitted frame decodes back from JSON")
	level := flag.String("log", "warn", "log level (logs go to stderr)")
	flag.Parse()

	util.SetupLoggerTo(os.Stderr, *level, true)

	var in device.Device = device.NewReaderDevice(os.Stdin, nil)
	if *path != "" {
		f, err := device.NewFileDevice(*path, false)
		if err != nil {
			log.Fatal().Err(err).Msg("[decode] open input")
		}
		in = f
	}
	defer func() { _ = in.Close() }()

	w := bufio.NewWriter(os.Stdout)
	n, err := run(in, w, options{empty: *empty, check: *check})
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		log.Fatal().Err(err).Msg("[decode] failed")
	}
	util.Info("[decode] done, %d frames", n)
}

type options struct {
	empty bool // emit {} for lines without a frame
	check bool // round-trip every frame through DecodeFrameJSON
}

// run decodes every line of in and writes JSON frames to out.
func run(in device.Device, out io.Writer, opts options) (int, error) {
	frames := 0
	for {
		line, err := in.ReadLine(0)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		f, ok := parser.DecodeFrame(line)
		if !ok {
			if opts.empty {
				if _, err := fmt.Fprintln(out, "{}"); err != nil {
					return frames, err
				}
			}
			continue
		}
		s, err := parser.EncodeFrame(f)
		if err != nil {
			return frames, err
		}
		if opts.check {
			back, err := parser.DecodeFrameJSON(s)
			if err != nil {
				return frames, fmt.Errorf("re-decode %q: %w", s, err)
			}
			if !reflect.DeepEqual(back, f) {
				return frames, fmt.Errorf("frame for line %q does not round-trip: %s", line, s)
			}
		}
		if _, err := fmt.Fprintln(out, s); err != nil {
			return frames, err
		}
		frames++
	}
}
