// Package newsletter composes stored posts and their caller-supplied
// annotations into a self-contained HTML digest.
package newsletter

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Post is one digest entry: a stored post plus the AI-supplied summary and
// optional translation attached by the caller.
type Post struct {
	Author      string
	TargetName  string
	Text        string
	Summary     string
	Translation string
	URL         string
	MediaURLs   []string
	PostedAt    string
}

// Group holds all posts for one target, in their input order.
type Group struct {
	TargetName string
	Posts      []Post
}

// GroupByTarget groups posts by target name. Group order is the order of
// first occurrence of each distinct name in the input; posts keep their input
// order within a group. No re-sorting happens here: recency ordering is the
// store's responsibility upstream.
func GroupByTarget(posts []Post) []Group {
	var groups []Group
	index := map[string]int{}

	for _, post := range posts {
		i, ok := index[post.TargetName]
		if !ok {
			i = len(groups)
			index[post.TargetName] = i
			groups = append(groups, Group{TargetName: post.TargetName})
		}
		groups[i].Posts = append(groups[i].Posts, post)
	}

	return groups
}

// Render writes a complete standalone HTML document for the given groups.
// All source-derived text is escaped; the output references no external
// resources and opens in any viewer without network access.
func Render(w io.Writer, groups []Group, total int) error {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<title>AI4News Weekly</title>\n")
	b.WriteString("<style>\n")
	b.WriteString(styleSheet)
	b.WriteString("</style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("<h1>AI4News Weekly</h1>\n")
	fmt.Fprintf(&b, "<p class=\"count\">%d new posts</p>\n", total)

	for _, group := range groups {
		b.WriteString("<section class=\"target\">\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(group.TargetName))
		for _, post := range group.Posts {
			renderPost(&b, post)
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}
	return nil
}

func renderPost(b *strings.Builder, post Post) {
	b.WriteString("<article class=\"post\">\n")
	fmt.Fprintf(b, "<p class=\"author\">%s <span class=\"posted-at\">%s</span></p>\n",
		html.EscapeString(post.Author), html.EscapeString(post.PostedAt))
	fmt.Fprintf(b, "<p class=\"text\">%s</p>\n", html.EscapeString(post.Text))
	fmt.Fprintf(b, "<p class=\"summary\">%s</p>\n", html.EscapeString(post.Summary))
	if post.Translation != "" {
		fmt.Fprintf(b, "<div class=\"translation\"><span class=\"label\">Translation</span><p>%s</p></div>\n",
			html.EscapeString(post.Translation))
	}
	fmt.Fprintf(b, "<p class=\"link\"><a href=\"%s\">View original</a></p>\n", html.EscapeString(post.URL))
	if len(post.MediaURLs) > 0 {
		b.WriteString("<ul class=\"media\">\n")
		for _, media := range post.MediaURLs {
			escaped := html.EscapeString(media)
			fmt.Fprintf(b, "<li><a href=\"%s\">%s</a></li>\n", escaped, escaped)
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</article>\n")
}

const styleSheet = `body { font-family: Georgia, 'Times New Roman', serif; max-width: 720px; margin: 0 auto; padding: 32px 16px; color: #222; }
h1 { border-bottom: 3px solid #0a66c2; padding-bottom: 8px; }
h2 { color: #0a66c2; margin-top: 32px; }
.count { color: #666; }
.post { border: 1px solid #ddd; border-radius: 6px; padding: 16px; margin: 16px 0; }
.author { font-weight: bold; margin: 0 0 8px; }
.posted-at { color: #888; font-size: 0.85em; font-weight: normal; }
.summary { background: #f3f6f8; padding: 12px; border-radius: 4px; }
.translation { border-left: 3px solid #0a66c2; padding-left: 12px; margin: 12px 0; }
.label { font-weight: bold; color: #0a66c2; }
.media a { font-size: 0.85em; word-break: break-all; }
`
