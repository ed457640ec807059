// Package main is the entry point of the SerialNode runtime.
// It loads the configuration, initializes the logger, constructs the hub and
// one node per configured line source, and starts them in a unified runtime.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"SerialNode/internal/config"
	"SerialNode/internal/core"
	"SerialNode/internal/device"
	"SerialNode/internal/util"

	"github.com/rs/zerolog/log"
)

// main loads configuration, constructs the system and starts all components.
// The program waits for an interrupt signal and performs graceful shutdown.
func main() {
	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	addr := flag.String("addr", "", "override hub listen address")
	listPorts := flag.Bool("ports", false, "list serial ports and exit")
	flag.Parse()

	if *listPorts {
		ports, err := device.Ports()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list ports: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		util.SetupLogger("info", true)
		log.Fatal().Err(err).Str("config", *cfgPath).Msg("[main] failed to load config")
	}
	if *addr != "" {
		cfg.Global.HubAddr = *addr
	}
	util.SetupLogger(cfg.Global.LogLevel, cfg.Global.LogPretty)
	log.Info().Str("config", *cfgPath).Int("nodes", len(cfg.Nodes)).Msg("[main] using config")

	sys := core.NewSystemFromConfig(cfg, core.OpenDevice)
	if err := sys.StartAll(); err != nil {
		util.Error("[main] failed to start system: %v", err)
		os.Exit(1)
	}

	// wait for Ctrl+C or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	util.Info("[main] shutting down system...")
	sys.StopAll()
	util.Info("[main] system stopped cleanly")
}
