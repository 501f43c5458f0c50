package gbfs

import (
	"encoding/json"
	"sort"
)

const (
	FeedStationInformation   = "station_information"
	FeedStationStatus        = "station_status"
	FeedVehicleStatus        = "vehicle_status"
	FeedFreeBikeStatus       = "free_bike_status"
	FeedVehicleTypes         = "vehicle_types"
	FeedGeofencingZones      = "geofencing_zones"
	FeedSystemPricingPlans   = "system_pricing_plans"
	FeedSystemInformation    = "system_information"
	DefaultDiscoveryLanguage = "en"
)

type Feed struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DiscoveryData covers both layouts: 3.0 lists feeds directly, 2.x nests them per language.
type DiscoveryData struct {
	Feeds     []Feed
	Languages map[string][]Feed
}

func (d *DiscoveryData) UnmarshalJSON(data []byte) error {
	var flat struct {
		Feeds []Feed `json:"feeds"`
	}
	if err := json.Unmarshal(data, &flat); err == nil && len(flat.Feeds) > 0 {
		d.Feeds = flat.Feeds
		return nil
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	d.Languages = map[string][]Feed{}
	for language, raw := range nested {
		var languageFeeds struct {
			Feeds []Feed `json:"feeds"`
		}
		if err := json.Unmarshal(raw, &languageFeeds); err != nil {
			continue
		}
		d.Languages[language] = languageFeeds.Feeds
	}

	return nil
}

type Discovery = Envelope[DiscoveryData]

// FeedsFor returns the feed list for language. 2.x documents fall back to the
// alphabetically first language when the preferred one is missing.
func (d DiscoveryData) FeedsFor(language string) []Feed {
	if len(d.Feeds) > 0 {
		return d.Feeds
	}
	if feeds, ok := d.Languages[language]; ok {
		return feeds
	}

	languages := make([]string, 0, len(d.Languages))
	for l := range d.Languages {
		languages = append(languages, l)
	}
	sort.Strings(languages)
	if len(languages) == 0 {
		return nil
	}
	return d.Languages[languages[0]]
}

func (d DiscoveryData) FeedURL(language string, name string) (string, bool) {
	for _, feed := range d.FeedsFor(language) {
		if feed.Name == name {
			return feed.URL, true
		}
	}
	return "", false
}
