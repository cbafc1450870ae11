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
	// Steem configuration
	NodeURL        string   `long:"node-url" env:"NODE_URL" default:"https://api.steemit.com" description:"Steem condenser API endpoint"`
	BroadcastURL   string   `long:"broadcast-url" env:"BROADCAST_URL" default:"https://api.steemconnect.com" description:"Broadcast service base URL for posting replies"`
	BroadcastToken string   `long:"broadcast-token" env:"BROADCAST_TOKEN" description:"Broadcast service access token (posting authority)"`
	Account        string   `long:"account" env:"BOT_ACCOUNT" description:"Bot account name; standing summaries are disabled when empty"`
	Reviewers      []string `long:"reviewer" env:"REVIEWERS" env-delim:"," description:"Account allow-list whose replies are inspected for commands"`
	UIBaseURL      string   `long:"ui-base-url" env:"UI_BASE_URL" default:"https://steemit.com" description:"Base URL of the platform UI used in links"`

	// Bot invocation
	BotPrefix  string `long:"bot-prefix" env:"BOT_PREFIX" default:"!" description:"Command prefix"`
	BotName    string `long:"bot-name" env:"BOT_NAME" default:"utopian" description:"Command name; prefix+name form the call token"`
	BotRepoURL string `long:"bot-repo-url" env:"BOT_REPO_URL" default:"https://github.com/utopian-io/utbot" description:"Repository URL linked from help messages"`

	// Discord webhooks
	TasksWebhookURL         string `long:"tasks-webhook" env:"TASKS_WEBHOOK_URL" description:"Discord webhook for task-update notifications (optional)"`
	ContributionsWebhookURL string `long:"contributions-webhook" env:"CONTRIBUTIONS_WEBHOOK_URL" description:"Discord webhook for reviewed contributions (optional)"`

	// Contribution review service
	ReviewServiceURL string `long:"review-service-url" env:"REVIEW_SERVICE_URL" default:"https://utopian.rocks/api/batch/contributions" description:"Batch endpoint of the contribution review service"`

	// Application configuration
	CategoriesFile    string `long:"categories-file" env:"CATEGORIES_FILE" description:"YAML category table; compiled-in defaults are used when empty"`
	DBPath            string `long:"db-path" env:"DB_PATH" default:"./utbot.db" description:"SQLite database path for de-duplication bookkeeping"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of command dispatch workers"`
	PollInterval      int    `long:"poll-interval" env:"POLL_INTERVAL" default:"180" description:"Contribution poll interval in seconds"`
	NotifyInterval    int    `long:"notify-interval" env:"NOTIFY_INTERVAL" default:"2" description:"Contribution notification pacing in seconds"`
	BlockInterval     int    `long:"block-interval" env:"BLOCK_INTERVAL" default:"3" description:"Chain head poll interval in seconds"`
	ReplyRetryCount   int    `long:"reply-retry-count" env:"REPLY_RETRY_COUNT" default:"3" description:"Attempts for posting replies on chain"`
	ReplyRetryBackoff int    `long:"reply-retry-backoff" env:"REPLY_RETRY_BACKOFF" default:"5" description:"Fixed backoff between reply attempts in seconds"`
	FetchRetryCount   int    `long:"fetch-retry-count" env:"FETCH_RETRY_COUNT" default:"3" description:"Attempts for fetching the contribution batch"`
	FetchRetryBackoff int    `long:"fetch-retry-backoff" env:"FETCH_RETRY_BACKOFF" default:"10" description:"Fixed backoff between fetch attempts in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"utbot/1.0" description:"User agent string for HTTP requests"`
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
		NodeURL:                 raw.NodeURL,
		BroadcastURL:            raw.BroadcastURL,
		BroadcastToken:          raw.BroadcastToken,
		Account:                 raw.Account,
		Reviewers:               raw.Reviewers,
		UIBaseURL:               raw.UIBaseURL,
		BotPrefix:               raw.BotPrefix,
		BotName:                 raw.BotName,
		BotRepoURL:              raw.BotRepoURL,
		TasksWebhookURL:         raw.TasksWebhookURL,
		ContributionsWebhookURL: raw.ContributionsWebhookURL,
		ReviewServiceURL:        raw.ReviewServiceURL,
		CategoriesFile:          raw.CategoriesFile,
		DBPath:                  raw.DBPath,
		Port:                    raw.Port,
		WorkerCount:             raw.WorkerCount,
		PollInterval:            raw.PollInterval,
		NotifyInterval:          raw.NotifyInterval,
		BlockInterval:           raw.BlockInterval,
		ReplyRetryCount:         raw.ReplyRetryCount,
		ReplyRetryBackoff:       raw.ReplyRetryBackoff,
		FetchRetryCount:         raw.FetchRetryCount,
		FetchRetryBackoff:       raw.FetchRetryBackoff,
		UserAgent:               raw.UserAgent,
		Debug:                   raw.Debug,
		Version:                 GetVersion(),
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
