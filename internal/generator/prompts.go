package generator

import (
	"encoding/json"
	"fmt"

	"github.com/contentforge/contentforge/pkg/models"
)

// groupResult holds the parsed fields of one prompt group. Each group's
// JSON response unmarshals into the subset of fields it produces.
type groupResult struct {
	TwitterPosts       []string          `json:"twitter_posts"`
	LinkedInPosts      []string          `json:"linkedin_posts"`
	InstagramCaptions  []string          `json:"instagram_captions"`
	BlogArticle        *longFormResponse `json:"blog_article"`
	EmailNewsletter    *longFormResponse `json:"email_newsletter"`
	QuoteGraphics      []string          `json:"quote_graphics"`
	TikTokHooks        []string          `json:"tiktok_hooks"`
	VideoScriptSummary string            `json:"video_script_summary"`
	TwitterThread      []string          `json:"twitter_thread"`
	PodcastShowNotes   []string          `json:"podcast_show_notes"`
}

type longFormResponse struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// promptGroup pairs a system prompt with a user prompt builder and a
// validator that checks the group's required fields came back populated.
type promptGroup struct {
	name     string
	system   string
	build    func(transcript string) string
	validate func(r *groupResult) error
}

var promptGroups = []promptGroup{
	{
		name: "social",
		system: "You are a social media copywriter. You turn transcripts into " +
			"platform-native posts. Respond only with JSON.",
		build: func(transcript string) string {
			return fmt.Sprintf(`From the transcript below, produce:
- "twitter_posts": 5 standalone tweets, each under 280 characters
- "linkedin_posts": 3 professional posts, 100-200 words each
- "instagram_captions": 3 captions with relevant hashtags

Respond with a JSON object containing exactly those three keys.

Transcript:
%s`, transcript)
		},
		validate: func(r *groupResult) error {
			if len(r.TwitterPosts) == 0 {
				return fmt.Errorf("missing twitter_posts")
			}
			if len(r.LinkedInPosts) == 0 {
				return fmt.Errorf("missing linkedin_posts")
			}
			if len(r.InstagramCaptions) == 0 {
				return fmt.Errorf("missing instagram_captions")
			}
			return nil
		},
	},
	{
		name: "longform",
		system: "You are a long-form content writer. You turn transcripts into " +
			"articles and newsletters. Respond only with JSON.",
		build: func(transcript string) string {
			return fmt.Sprintf(`From the transcript below, produce:
- "blog_article": an object with "title" and "content" (800-1200 words, markdown)
- "email_newsletter": an object with "subject" and "content" (300-500 words)

Respond with a JSON object containing exactly those two keys.

Transcript:
%s`, transcript)
		},
		validate: func(r *groupResult) error {
			if r.BlogArticle == nil || r.BlogArticle.Content == "" {
				return fmt.Errorf("missing blog_article")
			}
			if r.EmailNewsletter == nil || r.EmailNewsletter.Content == "" {
				return fmt.Errorf("missing email_newsletter")
			}
			return nil
		},
	},
	{
		name: "quotes",
		system: "You extract quotable moments and short-form hooks from " +
			"transcripts. Respond only with JSON.",
		build: func(transcript string) string {
			return fmt.Sprintf(`From the transcript below, produce:
- "quote_graphics": 5 short verbatim-or-lightly-edited quotes suitable for image overlays
- "tiktok_hooks": 5 opening lines for short-form video, each under 15 words
- "video_script_summary": a 2-3 sentence summary of the source material

Respond with a JSON object containing exactly those three keys.

Transcript:
%s`, transcript)
		},
		validate: func(r *groupResult) error {
			if len(r.QuoteGraphics) == 0 {
				return fmt.Errorf("missing quote_graphics")
			}
			if len(r.TikTokHooks) == 0 {
				return fmt.Errorf("missing tiktok_hooks")
			}
			if r.VideoScriptSummary == "" {
				return fmt.Errorf("missing video_script_summary")
			}
			return nil
		},
	},
	{
		name: "thread",
		system: "You write threads and show notes from transcripts. " +
			"Respond only with JSON.",
		build: func(transcript string) string {
			return fmt.Sprintf(`From the transcript below, produce:
- "twitter_thread": 8-12 numbered tweets forming one connected thread
- "podcast_show_notes": timestamped bullet points covering the main topics

Respond with a JSON object containing exactly those two keys.

Transcript:
%s`, transcript)
		},
		validate: func(r *groupResult) error {
			if len(r.TwitterThread) == 0 {
				return fmt.Errorf("missing twitter_thread")
			}
			if len(r.PodcastShowNotes) == 0 {
				return fmt.Errorf("missing podcast_show_notes")
			}
			return nil
		},
	},
}

// parseGroup decodes a raw model response and checks the group's
// required fields.
func parseGroup(g promptGroup, raw string) (*groupResult, error) {
	var r groupResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: group %s: %v", ErrMalformedResponse, g.name, err)
	}
	if err := g.validate(&r); err != nil {
		return nil, fmt.Errorf("%w: group %s: %v", ErrMalformedResponse, g.name, err)
	}
	return &r, nil
}

// merge folds one group's fields into the bundle. Groups write disjoint
// fields, so merge order does not matter.
func merge(out *models.ContentOutputs, r *groupResult) {
	if len(r.TwitterPosts) > 0 {
		out.TwitterPosts = r.TwitterPosts
	}
	if len(r.LinkedInPosts) > 0 {
		out.LinkedInPosts = r.LinkedInPosts
	}
	if len(r.InstagramCaptions) > 0 {
		out.InstagramCaptions = r.InstagramCaptions
	}
	if r.BlogArticle != nil {
		out.BlogArticle = models.LongFormPiece{
			Title:   r.BlogArticle.Title,
			Content: r.BlogArticle.Content,
		}
	}
	if r.EmailNewsletter != nil {
		out.EmailNewsletter = models.LongFormPiece{
			Subject: r.EmailNewsletter.Subject,
			Content: r.EmailNewsletter.Content,
		}
	}
	if len(r.QuoteGraphics) > 0 {
		out.QuoteGraphics = r.QuoteGraphics
	}
	if len(r.TikTokHooks) > 0 {
		out.TikTokHooks = r.TikTokHooks
	}
	if r.VideoScriptSummary != "" {
		out.VideoScriptSummary = r.VideoScriptSummary
	}
	if len(r.TwitterThread) > 0 {
		out.TwitterThread = r.TwitterThread
	}
	if len(r.PodcastShowNotes) > 0 {
		out.PodcastShowNotes = r.PodcastShowNotes
	}
}
