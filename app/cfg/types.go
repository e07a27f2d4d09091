package cfg

type Cfg struct {
	// Feed source
	FeedURL string

	// Google Sheets store
	SheetID         string
	SheetName       string
	CredentialsJSON string

	// NSPD geoportal enrichment
	GeoportalURL string
	MapURL       string

	// Sync tuning
	LookupDelayMs int
	RetryWindow   int
	MaxProbeRow   int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
