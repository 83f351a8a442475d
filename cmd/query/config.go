package main

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Conf is the query CLI's YAML configuration, following the teacher's
// cmd/searcher/conf.go Conf/NewConf pattern.
type Conf struct {
	LogLevel     int    `yaml:"loglevel"`
	LogPath      string `yaml:"logpath"`
	ArtifactRoot string `yaml:"artifactroot"`
	MetricsAddr  string `yaml:"metricsaddr"`
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
