package steem

import (
	"encoding/json"
)

// Comment is an immutable snapshot of a content item (post or reply)
// fetched from the chain. The core never mutates it; its lifetime is
// owned by the external system.
type Comment struct {
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	URL            string `json:"url"`
	JSONMetadata   string `json:"json_metadata"`
}

// AuthorPerm returns the canonical "@author/permlink" identifier.
func (c *Comment) AuthorPerm() string {
	return "@" + c.Author + "/" + c.Permlink
}

// IsRoot reports whether the comment is a top-level post.
func (c *Comment) IsRoot() bool {
	return c.ParentAuthor == ""
}

// Tags extracts the classification tags from the json_metadata blob.
// Malformed metadata yields no tags rather than an error.
func (c *Comment) Tags() []string {
	if c.JSONMetadata == "" {
		return nil
	}
	var meta struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(c.JSONMetadata), &meta); err != nil {
		return nil
	}
	return meta.Tags
}

// MetadataSection returns the named object of the json_metadata blob,
// e.g. the bot's own structured summary record on one of its replies.
func (c *Comment) MetadataSection(name string, out any) bool {
	if c.JSONMetadata == "" {
		return false
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal([]byte(c.JSONMetadata), &meta); err != nil {
		return false
	}
	raw, ok := meta[name]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// CommentOp is a comment operation observed in a block. Only the fields
// needed to decide whether the full content is worth fetching are kept.
type CommentOp struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
}

// Block is the subset of a signed block the watcher consumes.
type Block struct {
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	Operations []json.RawMessage `json:"operations"`
}

// CommentOps extracts all comment operations from the block, skipping
// operations of other types and malformed entries.
func (b *Block) CommentOps() []CommentOp {
	var ops []CommentOp
	for _, tx := range b.Transactions {
		for _, raw := range tx.Operations {
			var pair []json.RawMessage
			if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
				continue
			}
			var name string
			if err := json.Unmarshal(pair[0], &name); err != nil || name != "comment" {
				continue
			}
			var op CommentOp
			if err := json.Unmarshal(pair[1], &op); err != nil {
				continue
			}
			ops = append(ops, op)
		}
	}
	return ops
}
