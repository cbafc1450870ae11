package cfg

type Cfg struct {
	// Steem configuration
	NodeURL        string
	BroadcastURL   string
	BroadcastToken string
	Account        string
	Reviewers      []string
	UIBaseURL      string

	// Bot invocation
	BotPrefix  string
	BotName    string
	BotRepoURL string

	// Discord webhooks
	TasksWebhookURL         string
	ContributionsWebhookURL string

	// Contribution review service
	ReviewServiceURL string

	// Application configuration
	CategoriesFile    string
	DBPath            string
	Port              string
	WorkerCount       int
	PollInterval      int // seconds, contribution review service
	NotifyInterval    int // seconds, contribution webhook pacing
	BlockInterval     int // seconds, chain head polling
	ReplyRetryCount   int
	ReplyRetryBackoff int // seconds
	FetchRetryCount   int
	FetchRetryBackoff int // seconds

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}

// CallToken is the literal token users write to invoke the bot, e.g. "!utopian".
func (c *Cfg) CallToken() string {
	return c.BotPrefix + c.BotName
}
