package parser

import (
	"net/url"
	"strings"

	"CreatorProfiler/internal/domain"
)

// Platform labels assigned to items of each feed kind.
const (
	PlatformYouTube = "YouTube"
	PlatformPodcast = "Podcast"
	PlatformSite    = "Website/Blog"
)

const youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"

// PlannedFeed is one feed to ingest for a job.
type PlannedFeed struct {
	Platform string
	Title    string
	URL      string
}

// FeedPlan lists a job's feeds in ingestion order together with the channel
// id parsed from its video channel URL.
type FeedPlan struct {
	ChannelID string
	Feeds     []PlannedFeed
}

// PlanFeeds derives the feeds of a job. A channel URL without a
// "/channel/{id}" path contributes no feed.
func PlanFeeds(job domain.Job) FeedPlan {
	var plan FeedPlan

	if raw := strings.TrimSpace(job.YTChannelURL); raw != "" {
		plan.ChannelID = ChannelIDFromURL(raw)
		if plan.ChannelID != "" {
			plan.Feeds = append(plan.Feeds, PlannedFeed{
				Platform: PlatformYouTube,
				Title:    "YouTube Channel RSS feed",
				URL:      YouTubeFeedURL(plan.ChannelID),
			})
		}
	}

	if raw := strings.TrimSpace(job.PodcastRSS); raw != "" {
		plan.Feeds = append(plan.Feeds, PlannedFeed{Platform: PlatformPodcast, Title: "Podcast RSS feed", URL: raw})
	}

	if raw := strings.TrimSpace(job.SiteRSS); raw != "" {
		plan.Feeds = append(plan.Feeds, PlannedFeed{Platform: PlatformSite, Title: "Website/Blog RSS feed", URL: raw})
	}

	return plan
}

// ChannelIDFromURL extracts {id} from a ".../channel/{id}" URL, or "".
func ChannelIDFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	var segs []string
	for _, s := range strings.Split(parsed.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) >= 2 && strings.EqualFold(segs[0], "channel") {
		return segs[1]
	}
	return ""
}

// YouTubeFeedURL returns the public uploads feed of a channel.
func YouTubeFeedURL(channelID string) string {
	return youtubeFeedBase + "?channel_id=" + url.QueryEscape(channelID)
}
