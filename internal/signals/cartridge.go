package signals

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joshuarweaver/brieforge/internal/campaign"
)

// Cartridge is a platform-specific collection strategy: which engine to
// query, how to build fallback queries from a brief, and how to turn the raw
// provider payload into evidence. The supported set is a static table so the
// available platforms are enumerable at compile time.
type Cartridge struct {
	Name           string
	Platform       string
	Engine         string
	Intent         string
	Params         func(query string) map[string]string
	DefaultQueries func(brief campaign.Brief) []string
	Extract        func(raw RawPayload, query string) []Evidence
}

const (
	maxQueriesPerCartridge = 10
	maxSnippetLen          = 500
)

var cartridges = []Cartridge{
	{
		Name:     "google_serp",
		Platform: "google",
		Engine:   "google",
		Intent:   "Surface high-value competitor, audience, and trend insights via Google search results.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query, "location": "United States", "num": "10"}
		},
		DefaultQueries: googleDefaultQueries,
		Extract:        extractGoogle,
	},
	{
		Name:     "meta_ads",
		Platform: "meta",
		Engine:   "meta_ad_library",
		Intent:   "Find compelling creative, messaging themes, and competitive angles in the Meta Ads Library.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query, "country": "ALL"}
		},
		DefaultQueries: metaDefaultQueries,
		Extract:        extractMetaAds,
	},
	{
		Name:     "linkedin_ads",
		Platform: "linkedin",
		Engine:   "linkedin_ad_library",
		Intent:   "Uncover B2B positioning, offers, and creative formats in the LinkedIn Ads Library.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query}
		},
		DefaultQueries: linkedinDefaultQueries,
		Extract:        extractLinkedInAds,
	},
	{
		Name:     "tiktok_ads",
		Platform: "tiktok",
		Engine:   "tiktok_ads_library",
		Intent:   "Discover viral hooks, creator collaborations, and performance themes in the TikTok Ads Library.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query, "country": "ALL"}
		},
		DefaultQueries: tiktokDefaultQueries,
		Extract:        extractTikTokAds,
	},
	{
		Name:     "youtube",
		Platform: "youtube",
		Engine:   "youtube",
		Intent:   "Identify influential videos, creators, and customer proof on YouTube relevant to the campaign.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query, "gl": "us", "hl": "en"}
		},
		DefaultQueries: youtubeDefaultQueries,
		Extract:        extractYouTube,
	},
	{
		Name:     "pinterest",
		Platform: "pinterest",
		Engine:   "google",
		Intent:   "Capture visual trends, aesthetics, and shopping inspiration surfacing on Pinterest.",
		Params: func(query string) map[string]string {
			// SearchAPI.io has no dedicated Pinterest engine; scope a Google
			// search to the site instead.
			return map[string]string{"q": "site:pinterest.com " + query, "num": "10"}
		},
		DefaultQueries: pinterestDefaultQueries,
		Extract:        extractPinterest,
	},
	{
		Name:     "reddit",
		Platform: "reddit",
		Engine:   "reddit_ad_library",
		Intent:   "Surface competitive messaging, offers, and audience strategies from the Reddit Ads Library.",
		Params: func(query string) map[string]string {
			return map[string]string{"q": query}
		},
		DefaultQueries: redditDefaultQueries,
		Extract:        extractRedditAds,
	},
}

// Cartridges returns the static cartridge table.
func Cartridges() []Cartridge {
	return cartridges
}

// CartridgeByName looks up a cartridge by its search_method identifier.
func CartridgeByName(name string) (Cartridge, bool) {
	for _, c := range cartridges {
		if c.Name == name {
			return c, true
		}
	}
	return Cartridge{}, false
}

// Default query strategies. Retained as fallbacks when LLM query generation
// is disabled or fails.

func googleDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	if brief.Goal != "" && brief.Offer != "" {
		queries = append(queries, brief.Goal+" "+brief.Offer)
	}
	for _, competitor := range head(brief.Competitors, 3) {
		queries = append(queries, competitor+" review")
	}
	for _, audience := range head(brief.Audiences, 3) {
		queries = append(queries, audience+" "+brief.Offer)
	}
	if brief.Goal != "" {
		queries = append(queries, brief.Goal+" trends 2024")
	}
	if brief.Offer != "" {
		queries = append(queries, "best "+brief.Offer+" 2024")
	}
	return head(queries, maxQueriesPerCartridge)
}

func metaDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	queries = append(queries, head(brief.Competitors, 4)...)
	for _, audience := range head(brief.Audiences, 3) {
		queries = append(queries, audience+" "+brief.Offer)
	}
	if brief.Offer != "" {
		queries = append(queries, "best "+brief.Offer, "buy "+brief.Offer)
	}
	return head(queries, maxQueriesPerCartridge)
}

func linkedinDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	queries = append(queries, head(brief.Competitors, 5)...)
	if brief.Offer != "" {
		queries = append(queries,
			brief.Offer+" solution",
			brief.Offer+" platform",
			brief.Offer+" software",
			"enterprise "+brief.Offer,
		)
	}
	return head(queries, maxQueriesPerCartridge)
}

func tiktokDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	queries = append(queries, head(brief.Competitors, 4)...)
	if brief.Offer != "" {
		queries = append(queries, brief.Offer+" viral", "best "+brief.Offer, brief.Offer+" challenge")
	}
	for _, audience := range head(brief.Audiences, 2) {
		queries = append(queries, audience+" "+brief.Offer)
	}
	return head(queries, maxQueriesPerCartridge)
}

func youtubeDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer+" review")
	}
	for _, competitor := range head(brief.Competitors, 3) {
		queries = append(queries, competitor+" review")
	}
	if len(brief.Competitors) > 0 {
		queries = append(queries, brief.Offer+" vs "+brief.Competitors[0])
	}
	if brief.Offer != "" {
		queries = append(queries, "how to "+brief.Offer, "best "+brief.Offer+" 2024")
	}
	if brief.Goal != "" {
		queries = append(queries, brief.Goal+" tutorial")
	}
	if brief.Offer != "" {
		queries = append(queries, brief.Offer+" explained", brief.Offer+" guide")
	}
	return head(queries, maxQueriesPerCartridge)
}

func pinterestDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	for _, audience := range head(brief.Audiences, 3) {
		queries = append(queries, audience+" "+brief.Offer)
	}
	if brief.Offer != "" {
		queries = append(queries,
			brief.Offer+" ideas",
			brief.Offer+" inspiration",
			"best "+brief.Offer,
			brief.Offer+" aesthetic",
			brief.Offer+" style",
			brief.Offer+" design",
		)
	}
	return head(queries, maxQueriesPerCartridge)
}

func redditDefaultQueries(brief campaign.Brief) []string {
	var queries []string
	if brief.Offer != "" {
		queries = append(queries, brief.Offer)
	}
	queries = append(queries, head(brief.Competitors, 5)...)
	if brief.Offer != "" {
		queries = append(queries,
			"best "+brief.Offer,
			brief.Offer+" deals",
			brief.Offer+" sale",
			"buy "+brief.Offer,
		)
	}
	return head(queries, maxQueriesPerCartridge)
}

// Per-engine extraction.

type googlePayload struct {
	OrganicResults []struct {
		Title       string      `json:"title"`
		Snippet     string      `json:"snippet"`
		Link        string      `json:"link"`
		Date        string      `json:"date"`
		Position    int         `json:"position"`
		Source      string      `json:"source"`
		RichSnippet interface{} `json:"rich_snippet"`
	} `json:"organic_results"`
	RelatedQuestions []struct {
		Question string `json:"question"`
		Snippet  string `json:"snippet"`
		Link     string `json:"link"`
		Source   string `json:"source"`
	} `json:"related_questions"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
}

func extractGoogle(raw RawPayload, query string) []Evidence {
	var payload googlePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, result := range payload.OrganicResults {
		if i >= 5 {
			break
		}
		out = append(out, Evidence{
			Title:         result.Title,
			Snippet:       result.Snippet,
			URL:           result.Link,
			Platform:      "google",
			PublishedDate: parseEvidenceDate(result.Date),
			Metadata: map[string]interface{}{
				"position":     result.Position,
				"source":       result.Source,
				"rich_snippet": result.RichSnippet,
			},
		})
	}
	for i, question := range payload.RelatedQuestions {
		if i >= 3 {
			break
		}
		out = append(out, Evidence{
			Title:    question.Question,
			Snippet:  question.Snippet,
			URL:      question.Link,
			Platform: "google",
			Metadata: map[string]interface{}{
				"type":   "related_question",
				"source": question.Source,
			},
		})
	}
	for i, search := range payload.RelatedSearches {
		if i >= 3 {
			break
		}
		out = append(out, Evidence{
			Title:    "Related: " + search.Query,
			Snippet:  "Related search query: " + search.Query,
			URL:      "https://www.google.com/search?q=" + url.QueryEscape(search.Query),
			Platform: "google",
			Metadata: map[string]interface{}{
				"type":  "related_search",
				"query": search.Query,
			},
		})
	}
	return out
}

func extractPinterest(raw RawPayload, query string) []Evidence {
	var payload googlePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, result := range payload.OrganicResults {
		if i >= 10 {
			break
		}
		title := result.Title
		if title == "" {
			title = "Untitled Pin"
		}
		snippet := result.Snippet
		if snippet == "" {
			snippet = "No description"
		}
		out = append(out, Evidence{
			Title:         title,
			Snippet:       truncate(snippet, maxSnippetLen),
			URL:           result.Link,
			Platform:      "pinterest",
			PublishedDate: parseEvidenceDate(result.Date),
			Metadata: map[string]interface{}{
				"position":     result.Position,
				"source":       result.Source,
				"rich_snippet": result.RichSnippet,
			},
		})
	}
	return out
}

type metaAdsPayload struct {
	Ads []struct {
		AdArchiveID string `json:"ad_archive_id"`
		PageID      string `json:"page_id"`
		StartDate   string `json:"start_date"`
		Snapshot    struct {
			PageName        string        `json:"page_name"`
			Platforms       []interface{} `json:"platforms"`
			CTAText         string        `json:"cta_text"`
			Cards           []interface{} `json:"cards"`
			LinkURL         string        `json:"link_url"`
			LinkDescription string        `json:"link_description"`
			Body            struct {
				Text string `json:"text"`
			} `json:"body"`
		} `json:"snapshot"`
	} `json:"ads"`
}

func extractMetaAds(raw RawPayload, query string) []Evidence {
	var payload metaAdsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, ad := range payload.Ads {
		if i >= 10 {
			break
		}
		snippet := ad.Snapshot.Body.Text
		if snippet == "" {
			snippet = "No description"
		}
		pageName := ad.Snapshot.PageName
		if pageName == "" {
			pageName = "Unknown Advertiser"
		}
		adURL := ""
		if ad.AdArchiveID != "" {
			adURL = fmt.Sprintf("https://facebook.com/ads/library/?id=%s", ad.AdArchiveID)
		}
		out = append(out, Evidence{
			Title:         pageName,
			Snippet:       truncate(snippet, maxSnippetLen),
			URL:           adURL,
			Platform:      "meta",
			PublishedDate: parseEvidenceDate(ad.StartDate),
			Metadata: map[string]interface{}{
				"ad_archive_id":    ad.AdArchiveID,
				"page_id":          ad.PageID,
				"page_name":        pageName,
				"platforms":        ad.Snapshot.Platforms,
				"cta_text":         ad.Snapshot.CTAText,
				"cards":            ad.Snapshot.Cards,
				"link_url":         ad.Snapshot.LinkURL,
				"link_description": ad.Snapshot.LinkDescription,
			},
		})
	}
	return out
}

type linkedinAdsPayload struct {
	Ads []struct {
		AdType         string `json:"ad_type"`
		FirstShownDate string `json:"first_shown_date"`
		LastShownDate  string `json:"last_shown_date"`
		Advertiser     struct {
			Name      string `json:"name"`
			Thumbnail string `json:"thumbnail"`
		} `json:"advertiser"`
		Content struct {
			Headline string      `json:"headline"`
			Text     string      `json:"text"`
			URL      string      `json:"url"`
			Image    string      `json:"image"`
			CTA      interface{} `json:"cta"`
		} `json:"content"`
	} `json:"ads"`
}

func extractLinkedInAds(raw RawPayload, query string) []Evidence {
	var payload linkedinAdsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, ad := range payload.Ads {
		if i >= 10 {
			break
		}
		advertiserName := ad.Advertiser.Name
		if advertiserName == "" {
			advertiserName = "Unknown Advertiser"
		}
		snippet := ad.Content.Headline
		if snippet == "" {
			snippet = ad.Content.Text
		}
		if snippet == "" {
			snippet = "No description"
		}
		out = append(out, Evidence{
			Title:         advertiserName,
			Snippet:       truncate(snippet, maxSnippetLen),
			URL:           ad.Content.URL,
			Platform:      "linkedin",
			PublishedDate: parseEvidenceDate(ad.FirstShownDate),
			Metadata: map[string]interface{}{
				"advertiser_name":      advertiserName,
				"advertiser_thumbnail": ad.Advertiser.Thumbnail,
				"ad_type":              ad.AdType,
				"headline":             ad.Content.Headline,
				"image":                ad.Content.Image,
				"cta":                  ad.Content.CTA,
				"first_shown_date":     ad.FirstShownDate,
				"last_shown_date":      ad.LastShownDate,
			},
		})
	}
	return out
}

type tiktokAdsPayload struct {
	Ads []struct {
		ID                 string      `json:"id"`
		Advertiser         string      `json:"advertiser"`
		Caption            string      `json:"caption"`
		Description        string      `json:"description"`
		VideoLink          string      `json:"video_link"`
		CoverImage         string      `json:"cover_image"`
		EstimatedAudience  interface{} `json:"estimated_audience"`
		Reach              interface{} `json:"reach"`
		FirstShownDatetime interface{} `json:"first_shown_datetime"`
		LastShownDatetime  interface{} `json:"last_shown_datetime"`
	} `json:"ads"`
}

func extractTikTokAds(raw RawPayload, query string) []Evidence {
	var payload tiktokAdsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, ad := range payload.Ads {
		if i >= 10 {
			break
		}
		advertiser := ad.Advertiser
		if advertiser == "" {
			advertiser = "Unknown Advertiser"
		}
		caption := ad.Caption
		if caption == "" {
			caption = ad.Description
		}
		if caption == "" {
			caption = "No description"
		}
		out = append(out, Evidence{
			Title:         advertiser,
			Snippet:       truncate(caption, maxSnippetLen),
			URL:           ad.VideoLink,
			Platform:      "tiktok",
			PublishedDate: parseFlexibleDate(ad.FirstShownDatetime),
			Metadata: map[string]interface{}{
				"ad_id":                ad.ID,
				"advertiser":           advertiser,
				"video_link":           ad.VideoLink,
				"cover_image":          ad.CoverImage,
				"estimated_audience":   ad.EstimatedAudience,
				"first_shown_datetime": ad.FirstShownDatetime,
				"last_shown_datetime":  ad.LastShownDatetime,
				"reach":                ad.Reach,
			},
		})
	}
	return out
}

type youtubePayload struct {
	Videos []struct {
		Title          string      `json:"title"`
		Description    string      `json:"description"`
		Link           string      `json:"link"`
		PublishedTime  string      `json:"published_time"`
		Date           string      `json:"date"`
		Views          interface{} `json:"views"`
		ExtractedViews interface{} `json:"extracted_views"`
		Length         string      `json:"length"`
		Channel        struct {
			Title string `json:"title"`
			Name  string `json:"name"`
			Link  string `json:"link"`
		} `json:"channel"`
	} `json:"videos"`
}

func extractYouTube(raw RawPayload, query string) []Evidence {
	var payload youtubePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, video := range payload.Videos {
		if i >= 10 {
			break
		}
		channel := video.Channel.Title
		if channel == "" {
			channel = video.Channel.Name
		}
		out = append(out, Evidence{
			Title:         video.Title,
			Snippet:       truncate(video.Description, maxSnippetLen),
			URL:           video.Link,
			Platform:      "youtube",
			PublishedDate: parseEvidenceDate(video.PublishedTime),
			Metadata: map[string]interface{}{
				"channel":         channel,
				"channel_link":    video.Channel.Link,
				"views":           video.Views,
				"extracted_views": video.ExtractedViews,
				"length":          video.Length,
				"published":       video.PublishedTime,
				"date":            video.Date,
			},
		})
	}
	return out
}

type redditAdsPayload struct {
	Ads []struct {
		ID             string        `json:"id"`
		URL            string        `json:"url"`
		CreatedDate    string        `json:"created_date"`
		BudgetCategory string        `json:"budget_category"`
		Industry       string        `json:"industry"`
		Subreddits     []interface{} `json:"subreddits"`
		Devices        []interface{} `json:"devices"`
		Creative       struct {
			Headline string        `json:"headline"`
			Type     string        `json:"type"`
			Content  []interface{} `json:"content"`
		} `json:"creative"`
	} `json:"ads"`
}

func extractRedditAds(raw RawPayload, query string) []Evidence {
	var payload redditAdsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Evidence
	for i, ad := range payload.Ads {
		if i >= 10 {
			break
		}
		headline := ad.Creative.Headline
		if headline == "" {
			headline = "No headline"
		}
		snippet := headline
		if len(ad.Creative.Content) > 0 {
			if first, ok := ad.Creative.Content[0].(map[string]interface{}); ok {
				if text, ok := first["text"].(string); ok && text != "" {
					snippet = text
				}
			}
		}
		out = append(out, Evidence{
			Title:         headline,
			Snippet:       truncate(snippet, maxSnippetLen),
			URL:           ad.URL,
			Platform:      "reddit",
			PublishedDate: parseEvidenceDate(ad.CreatedDate),
			Metadata: map[string]interface{}{
				"ad_id":            ad.ID,
				"budget_category":  ad.BudgetCategory,
				"industry":         ad.Industry,
				"creative_type":    ad.Creative.Type,
				"creative_content": ad.Creative.Content,
				"subreddits":       ad.Subreddits,
				"devices":          ad.Devices,
			},
		})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

var evidenceDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseEvidenceDate parses the date formats providers actually return.
// Unparseable values (including relative dates like "2 days ago") yield nil.
func parseEvidenceDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range evidenceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseFlexibleDate additionally accepts Unix timestamps, which the TikTok
// library returns for first_shown_datetime.
func parseFlexibleDate(v interface{}) *time.Time {
	switch value := v.(type) {
	case string:
		return parseEvidenceDate(value)
	case float64:
		t := time.Unix(int64(value), 0).UTC()
		return &t
	}
	return nil
}
