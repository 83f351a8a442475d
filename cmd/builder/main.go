package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/tddhit/tools/log"

	"github.com/AntonIsraelsson/cryptobib-search/builder"
	"github.com/AntonIsraelsson/cryptobib-search/internal/logging"
	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

var confPath string

func init() {
	flag.StringVar(&confPath, "conf", "builder.yml", "config file")
	flag.Parse()
}

// inputRecord is the JSON-line shape the file named by the `records` config
// key (Conf.RecordsPath) is expected to hold;
// assembling that stream from an upstream source is explicitly out of
// scope for this CLI (spec §1, "Upstream source acquisition").
type inputRecord struct {
	Key       string   `json:"key"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Venue     string   `json:"venue,omitempty"`
	Year      int32    `json:"year,omitempty"`
	PageRange string   `json:"page_range,omitempty"`
	DOI       string   `json:"doi,omitempty"`
}

func loadRecords(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []types.Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, cap(buf))
	var id uint32
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var in inputRecord
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			return nil, err
		}
		records = append(records, types.Record{
			ID:         id,
			Key:        in.Key,
			Title:      in.Title,
			Authors:    in.Authors,
			AuthorsStr: strings.Join(in.Authors, types.AuthorSeparator),
			Venue:      in.Venue,
			Year:       in.Year,
			PageRange:  in.PageRange,
			DOI:        in.DOI,
		})
		id++
	}
	return records, scanner.Err()
}

func main() {
	conf, err := NewConf(confPath)
	if err != nil {
		log.Fatal(err)
	}
	logging.Init(conf.LogPath, conf.LogLevel)

	records, err := loadRecords(conf.RecordsPath)
	if err != nil {
		logging.Fatal("builder: load records:", err)
	}

	b := builder.New(&builder.Option{TargetDir: conf.TargetDir, Version: conf.Version})
	if err := b.Build(records); err != nil {
		logging.Fatal("builder: build:", err)
	}
}
