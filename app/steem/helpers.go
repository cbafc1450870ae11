package steem

import (
	"strings"
)

// CommentURL builds the platform UI link for a content item.
func CommentURL(uiBase string, c *Comment) string {
	base := strings.TrimRight(uiBase, "/")
	if c.URL != "" {
		return base + c.URL
	}
	return base + "/" + c.AuthorPerm()
}

// AccountURL builds the platform UI link for an account profile.
func AccountURL(uiBase, account string) string {
	return strings.TrimRight(uiBase, "/") + "/@" + account
}

// AvatarURL builds the image proxy link for an account avatar.
func AvatarURL(account string) string {
	return "https://steemitimages.com/u/" + account + "/avatar"
}

// AccountLinks renders account names as markdown profile links.
func AccountLinks(uiBase string, accounts []string) string {
	links := make([]string, 0, len(accounts))
	for _, name := range accounts {
		name = strings.Trim(name, "@ ")
		if name == "" {
			continue
		}
		links = append(links, "["+name+"]("+AccountURL(uiBase, name)+")")
	}
	return strings.Join(links, ", ")
}

// AuthorPermFromURL extracts author and permlink from a UI link of the
// form ".../@author/permlink". Both are empty when the link does not
// carry an account path.
func AuthorPermFromURL(url string) (author, permlink string) {
	idx := strings.LastIndex(url, "/@")
	if idx < 0 {
		return "", ""
	}
	rest := strings.Trim(url[idx+2:], "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], strings.SplitN(parts[1], "#", 2)[0]
}
