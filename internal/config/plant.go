package config

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

type PlantConfig struct {
	Name               string        `yaml:"name" env-default:"Auvere"`
	Area               string        `yaml:"area" env:"PLANT_AREA" env-default:"EE"`
	ColumnMatch        string        `yaml:"column_match" env:"PLANT_COLUMN_MATCH" env-default:"Auvere"`
	Timezone           string        `yaml:"timezone" env-default:"Europe/Tallinn"`
	Lookback           time.Duration `yaml:"lookback" env:"PLANT_LOOKBACK" env-default:"24h"`
	RunningThresholdMW float64       `yaml:"running_threshold_mw" env-default:"15"`
	DownThresholdMW    float64       `yaml:"down_threshold_mw" env-default:"10"`
	CacheTTL           time.Duration `yaml:"cache_ttl" env-default:"5m"`
}

func (p PlantConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

type NewsConfig struct {
	Source      string           `yaml:"source" env:"NEWS_SOURCE" env-default:"rss"`
	Query       string           `yaml:"query" env:"NEWS_QUERY" env-default:"auvere elektrijaam"`
	MaxItems    int              `yaml:"max_items" env-default:"5"`
	Timeout     time.Duration    `yaml:"timeout" env-default:"5s"`
	CacheTTL    time.Duration    `yaml:"cache_ttl" env-default:"2h"`
	MinInterval time.Duration    `yaml:"min_interval" env-default:"1s"`
	UserAgent   string           `yaml:"user_agent" env-default:"plantwatch/1.0"`
	RSS         RSSConfig        `yaml:"rss"`
	HTMLSearch  HTMLSearchConfig `yaml:"html_search"`
}

type RSSConfig struct {
	URL      string `yaml:"url" env-default:"https://news.google.com/rss/search"`
	Language string `yaml:"language" env-default:"et"`
	Region   string `yaml:"region" env-default:"EE"`
}

type HTMLSearchConfig struct {
	URL           string `yaml:"url" env-default:"https://www.err.ee/search"`
	QueryParam    string `yaml:"query_param" env-default:"phrase"`
	ItemSelector  string `yaml:"item_selector" env-default:"article"`
	TitleSelector string `yaml:"title_selector" env-default:"h2"`
	LinkSelector  string `yaml:"link_selector" env-default:"a[href]"`
	DateSelector  string `yaml:"date_selector" env-default:"time"`
}
