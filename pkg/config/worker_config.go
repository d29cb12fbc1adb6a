// Package config provides configuration loading for the worker's
// trigger bindings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkerConfigFile is the structure of the worker bindings YAML file.
type WorkerConfigFile struct {
	Redis    RedisConfig     `yaml:"redis"`
	Bindings []BindingConfig `yaml:"bindings"`
}

// RedisConfig holds the shared Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BindingConfig maps one queue to one workflow.
type BindingConfig struct {
	WorkflowID string `yaml:"workflow_id"`
	Queue      string `yaml:"queue"`
}

// LoadWorkerConfig loads worker trigger bindings from a YAML file.
func LoadWorkerConfig(path string) (*WorkerConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config WorkerConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}

	if len(config.Bindings) == 0 {
		return nil, errors.New("config declares no bindings")
	}

	for i, binding := range config.Bindings {
		if binding.WorkflowID == "" {
			return nil, fmt.Errorf("binding %d is missing workflow_id", i)
		}

		if binding.Queue == "" {
			return nil, fmt.Errorf("binding %d is missing queue", i)
		}
	}

	return &config, nil
}
