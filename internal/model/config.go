package model

// Source kinds accepted in NodeConfig.Source.
const (
	SourceSerial = "serial"
	SourceFile   = "file"
	SourceStdin  = "stdin"
)

// Config represents the root structure loaded from configs/config.yml.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	Nodes  []NodeConfig `yaml:"nodes"`
}

// GlobalConfig defines shared settings across the system.
type GlobalConfig struct {
	HubAddr   string `yaml:"hub_addr"`   // address for the frame hub (e.g. ":10000")
	LogLevel  string `yaml:"log_level"`  // trace, debug, info, warn, error
	LogPretty bool   `yaml:"log_pretty"` // console writer instead of JSON
}

// NodeConfig defines a single line source feeding the decoder.
type NodeConfig struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source"` // serial | file | stdin
	Device string `yaml:"device"` // serial device path
	Baud   int    `yaml:"baud"`
	Path   string `yaml:"path"`   // log file path
	Follow bool   `yaml:"follow"` // keep reading the file as it grows
}
