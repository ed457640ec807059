// Telemetry simulator: writes instrument lines ("[ts] TICK KIND PAYLOAD") to a
// serial device, a log file, or a socat virtual serial pair.
// Use this for local testing when you don't have real instrument hardware.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SerialNode/internal/device"
	"SerialNode/internal/util"

	"github.com/rs/zerolog/log"
)

func main() {
	dev := flag.String("dev", "", "serial device to write telemetry into")
	baud := flag.Int("baud", 9600, "baud rate")
	file := flag.String("file", "", "append telemetry to this log file instead of a serial device")
	virt := flag.Bool("virt", false, "create a socat pty pair (/tmp/ttySIM0 <-> /tmp/ttySIM1) and write into the first end")
	id := flag.String("id", "SIM01", "simulator id")
	interval := flag.Int("interval", 1000, "ms between lines")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	util.SetupLogger(*level, true)

	var socat *util.SocatManager
	if *virt {
		socat = util.NewSocatManager()
		if err := socat.CreatePair("/tmp/ttySIM0", "/tmp/ttySIM1"); err != nil {
			log.Fatal().Err(err).Msg("[sim] create virtual pair")
		}
		defer socat.Cleanup()
		// give socat time to create the links
		time.Sleep(500 * time.Millisecond)
		*dev = "/tmp/ttySIM0"
		util.Info("[sim] point a serial node at %s", "/tmp/ttySIM1")
	}

	var (
		out device.Device
		err error
	)
	switch {
	case *file != "":
		out, err = device.NewFileDevice(*file, false)
	case *dev != "":
		out, err = device.NewSerialDevice(*dev, *baud)
	default:
		out = device.NewReaderDevice(os.Stdin, os.Stdout)
	}
	if err != nil {
		if socat != nil {
			socat.Cleanup()
		}
		log.Fatal().Err(err).Msg("[sim] open output")
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("[sim] close output")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sim := device.NewSimulator(*id, out, time.Duration(*interval)*time.Millisecond)
	if err := sim.Run(ctx); err != nil {
		util.Error("[sim] run: %v", err)
	}
}
