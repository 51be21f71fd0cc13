package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the YAML configuration accepted via -config, layered
// under the command-line flags (a flag explicitly set on the command
// line always wins — see main.go's applyConfigFile).
type ConfigFile struct {
	UDPAddr          string   `yaml:"udp_addr"`
	TCPAddr          string   `yaml:"tcp_addr"`
	Mode             string   `yaml:"mode"`
	ZoneFile         string   `yaml:"zone_file"`
	ZoneFormat       string   `yaml:"zone_format"`
	RouterZone       string   `yaml:"router_zone"`
	Workers          int      `yaml:"workers"`
	QueriesPerSecond float64  `yaml:"queries_per_second"`
	BurstSize        int      `yaml:"burst_size"`
	ExemptCIDRs      []string `yaml:"exempt_cidrs"`
	MetricsAddr      string   `yaml:"metrics_addr"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*ConfigFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c ConfigFile
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
