package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"github.com/tddhit/tools/log"

	"github.com/AntonIsraelsson/cryptobib-search/index"
	"github.com/AntonIsraelsson/cryptobib-search/internal/logging"
	"github.com/AntonIsraelsson/cryptobib-search/internal/metrics"
)

var (
	confPath string
	query    string
	limit    int
)

func init() {
	flag.StringVar(&confPath, "conf", "query.yml", "config file")
	flag.StringVar(&query, "query", "", "ad hoc query string")
	flag.IntVar(&limit, "limit", 0, "result limit, 0 uses the default")
	flag.Parse()
}

func main() {
	conf, err := NewConf(confPath)
	if err != nil {
		log.Fatal(err)
	}
	logging.Init(conf.LogPath, conf.LogLevel)

	m := metrics.New()
	if conf.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", metrics.Handler())
			logging.Error(http.ListenAndServe(conf.MetricsAddr, nil))
		}()
	}

	e := index.New(m)
	if err := e.Init(conf.ArtifactRoot); err != nil {
		logging.Fatal("query: init:", err)
	}

	results, err := e.Search(query, index.Options{Limit: limit})
	if err != nil {
		logging.Fatal("query: search:", err)
	}
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logging.Fatal("query: marshal results:", err)
	}
	fmt.Println(string(out))
}
