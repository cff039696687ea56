package app

import (
	"fmt"
	"time"
)

// relativeTimestamp renders message ages the way the sidebar and transcript
// show them. Sub-minute buckets keep early messages from flickering through
// second counts on every tick.
func relativeTimestamp(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	delta := now.Sub(createdAt)
	if delta < 0 {
		delta = 0
	}
	if delta < 30*time.Second {
		return "just now"
	}
	if delta < time.Minute {
		secs := int(delta.Round(time.Second).Seconds())
		if secs <= 1 {
			return "1 second ago"
		}
		return fmt.Sprintf("%d seconds ago", secs)
	}
	if delta < time.Hour {
		minutes := int(delta.Round(time.Minute).Minutes())
		if minutes <= 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	if delta < 24*time.Hour {
		hours := int(delta.Round(time.Hour).Hours())
		if hours <= 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(delta.Round(24*time.Hour).Hours() / 24)
	if days <= 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

// timestampRenderBucket changes once a minute so the transcript cache only
// re-renders when a visible relative label could have changed.
func timestampRenderBucket(now time.Time) int64 {
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC().Unix() / 60
}
