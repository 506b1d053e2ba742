package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

// reading config error is fatal, and exits main thread
func processError(err error) {
	fmt.Println(err)
	os.Exit(2)
}

func readFile(cfg *Configuration) {
	f, err := os.Open("config.yml")
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		processError(err)
	}
}

func readEnv(cfg *Configuration) {
	err := envconfig.Process("", cfg)
	if err != nil {
		processError(err)
	}
}

func applyDefaults(cfg *Configuration) {
	if cfg.Bridge.FeeBasisPoints == 0 {
		cfg.Bridge.FeeBasisPoints = DefaultFeeBasisPoints
	}
	if cfg.Bridge.ProcessingSeconds == 0 {
		cfg.Bridge.ProcessingSeconds = DefaultProcessingSeconds
	}
	if cfg.Consensus.QuorumNumerator == 0 {
		cfg.Consensus.QuorumNumerator = DefaultQuorumNumerator
	}
	if cfg.Consensus.QuorumDenominator == 0 {
		cfg.Consensus.QuorumDenominator = DefaultQuorumDenominator
	}
	if cfg.Consensus.CacheTTLSeconds == 0 {
		cfg.Consensus.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Consensus.MaxAttempts == 0 {
		cfg.Consensus.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Monitor.SweepSeconds == 0 {
		cfg.Monitor.SweepSeconds = DefaultSweepSeconds
	}
	if cfg.Monitor.RebalanceIntervalSeconds == 0 {
		cfg.Monitor.RebalanceIntervalSeconds = DefaultRebalanceSeconds
	}
}

func Init() {
	readFile(&Config)
	readEnv(&Config)
	applyDefaults(&Config)
}
