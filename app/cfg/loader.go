package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed source
	FeedURL string `long:"feed-url" env:"FEED_URL" default:"https://torgi.gov.ru/new/api/public/lotcards/rss?lotStatus=PUBLISHED,APPLICATIONS_SUBMISSION&matchPhrase=false&byFirstVersion=true" description:"Auction lot RSS feed URL"`

	// Google Sheets store
	SheetID         string `long:"sheet-id" env:"GOOGLE_SHEET_ID" description:"Google spreadsheet ID (required)" required:"true"`
	SheetName       string `long:"sheet-name" env:"SHEET_NAME" default:"Sheet1" description:"Worksheet name inside the spreadsheet"`
	CredentialsJSON string `long:"credentials" env:"GOOGLE_CREDENTIALS" description:"Google service account credentials JSON (required)" required:"true"`

	// NSPD geoportal enrichment
	GeoportalURL string `long:"geoportal-url" env:"GEOPORTAL_URL" default:"https://nspd.gov.ru/api/geoportal/v2/search/geoportal" description:"Geoportal search API base URL"`
	MapURL       string `long:"map-url" env:"MAP_URL" default:"https://nspd.gov.ru/map?thematic=PKK&zoom=14&baseLayerId=235&theme_id=1" description:"Public map page URL used to bootstrap a geoportal session"`

	// Sync tuning
	LookupDelayMs int `long:"lookup-delay" env:"LOOKUP_DELAY_MS" default:"500" description:"Delay between successive geoportal lookups in milliseconds"`
	RetryWindow   int `long:"retry-window" env:"RETRY_WINDOW" default:"200" description:"Number of most recent rows rescanned for failed enrichments"`
	MaxProbeRow   int `long:"max-probe-row" env:"MAX_PROBE_ROW" default:"1048576" description:"Row ceiling for the sparse last-row search"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedURL:         raw.FeedURL,
		SheetID:         raw.SheetID,
		SheetName:       raw.SheetName,
		CredentialsJSON: raw.CredentialsJSON,
		GeoportalURL:    raw.GeoportalURL,
		MapURL:          raw.MapURL,
		LookupDelayMs:   raw.LookupDelayMs,
		RetryWindow:     raw.RetryWindow,
		MaxProbeRow:     raw.MaxProbeRow,
		UserAgent:       raw.UserAgent,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
