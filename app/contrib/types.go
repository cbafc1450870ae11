package contrib

import (
	"time"

	"github.com/utopian-io/utbot/app/steem"
)

// ReviewTimeFormat is the fixed, second-precision timestamp format the
// review service uses.
const ReviewTimeFormat = "2006-01-02 15:04:05"

// Contribution is a reviewed submission record fetched from the review
// service. Distinct from task requests, which flow through the command
// pipeline.
type Contribution struct {
	URL         string `json:"url"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Moderator   string `json:"moderator"`
	Score       int    `json:"score"`
	StaffPicked bool   `json:"staff_picked"`
	Created     string `json:"created"`
	ReviewDate  string `json:"review_date"`
}

// ReviewedAt parses the record's review timestamp.
func (c *Contribution) ReviewedAt() (time.Time, error) {
	return time.Parse(ReviewTimeFormat, c.ReviewDate)
}

// AuthorPerm extracts the content identifier from the record's URL.
func (c *Contribution) AuthorPerm() (author, permlink string) {
	return steem.AuthorPermFromURL(c.URL)
}
