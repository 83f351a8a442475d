package main

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Conf is the builder CLI's YAML configuration, following
// cmd/searcher/conf.go's Conf/NewConf pattern.
type Conf struct {
	LogLevel    int    `yaml:"loglevel"`
	LogPath     string `yaml:"logpath"`
	RecordsPath string `yaml:"records"`
	TargetDir   string `yaml:"target"`
	Version     string `yaml:"version"`
}

func NewConf(path string) (*Conf, error) {
	c := &Conf{}
	file, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, err
	}
	return c, nil
}
