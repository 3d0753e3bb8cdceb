package models

// LongFormPiece is a generated long-form asset with a server-computed
// word count. The count is always recomputed from Content; the value the
// model reports is never trusted.
type LongFormPiece struct {
	Title     string `json:"title,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// ContentOutputs is the fixed ten-field bundle produced for a completed
// job. A job is only completed when every field is populated; partial
// bundles are never persisted.
type ContentOutputs struct {
	TwitterPosts       []string      `json:"twitter_posts"`
	LinkedInPosts      []string      `json:"linkedin_posts"`
	InstagramCaptions  []string      `json:"instagram_captions"`
	BlogArticle        LongFormPiece `json:"blog_article"`
	EmailNewsletter    LongFormPiece `json:"email_newsletter"`
	QuoteGraphics      []string      `json:"quote_graphics"`
	TwitterThread      []string      `json:"twitter_thread"`
	PodcastShowNotes   []string      `json:"podcast_show_notes"`
	VideoScriptSummary string        `json:"video_script_summary"`
	TikTokHooks        []string      `json:"tiktok_hooks"`
}

// Complete reports whether all ten fields are populated.
func (o *ContentOutputs) Complete() bool {
	return len(o.TwitterPosts) > 0 &&
		len(o.LinkedInPosts) > 0 &&
		len(o.InstagramCaptions) > 0 &&
		o.BlogArticle.Content != "" &&
		o.EmailNewsletter.Content != "" &&
		len(o.QuoteGraphics) > 0 &&
		len(o.TwitterThread) > 0 &&
		len(o.PodcastShowNotes) > 0 &&
		o.VideoScriptSummary != "" &&
		len(o.TikTokHooks) > 0
}
