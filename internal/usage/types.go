package usage

// Key identifies one accumulation bucket entry: an application plus,
// for browsers, the site that was in the active tab. An empty SiteURL means
// no site (non-browser application or URL unavailable).
type Key struct {
	AppName string
	SiteURL string
}

// Bucket accumulates sampled foreground seconds per key.
type Bucket map[Key]int64

// Entry is the wire form of one accumulated bucket entry.
type Entry struct {
	AppName         string `json:"app_name"`
	DurationSeconds int64  `json:"duration_seconds"`
	SiteURL         string `json:"site_url,omitempty"`
}

// Entries converts the bucket to its wire form, skipping non-positive
// durations. Ordering is not significant.
func (b Bucket) Entries() []Entry {
	entries := make([]Entry, 0, len(b))
	for key, seconds := range b {
		if seconds <= 0 {
			continue
		}
		entries = append(entries, Entry{
			AppName:         key.AppName,
			DurationSeconds: seconds,
			SiteURL:         key.SiteURL,
		})
	}
	return entries
}

// Merge adds the other bucket's counts into this one.
func (b Bucket) Merge(other Bucket) {
	for key, seconds := range other {
		b[key] += seconds
	}
}
