package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dconrad/dispatch/submit"
)

// FileConfig is the YAML shape dispatchctl submit accepts via --config,
// following cuemby-warren's apply command: a cobra flag names the file,
// os.ReadFile loads it, and yaml.Unmarshal decodes straight into a plain
// struct. No configuration-management library is involved.
type FileConfig struct {
	LogDirectory string            `yaml:"log_directory"`
	MemoryMB     int               `yaml:"memory_mb"`
	NCPUs        int               `yaml:"n_cpus"`
	NGPUs        int               `yaml:"n_gpus"`
	LoadAvgMax   float64           `yaml:"loadavg_max"`
	GroupSize    int               `yaml:"groupsize"`
	NGroups      int               `yaml:"ngroups"`
	Wrapper      string            `yaml:"wrapper"`
	Environment  map[string]string `yaml:"environment"`
}

// LoadFileConfig reads and decodes a YAML submission config from path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("dispatchctl: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("dispatchctl: parsing config %s: %w", path, err)
	}
	return fc, nil
}

// ToSubmitConfig converts the decoded YAML document into submit.Config,
// the recognized-keys table spec.md §4.3 specifies.
func (fc FileConfig) ToSubmitConfig() submit.Config {
	return submit.Config{
		LogDirectory: fc.LogDirectory,
		MemoryMB:     fc.MemoryMB,
		NCPUs:        fc.NCPUs,
		NGPUs:        fc.NGPUs,
		LoadAvgMax:   fc.LoadAvgMax,
		GroupSize:    fc.GroupSize,
		NGroups:      fc.NGroups,
		Wrapper:      fc.Wrapper,
		Environment:  fc.Environment,
	}
}
