package capture

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpoolBase(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "query string dropped",
			url:  "https://www.etsy.com/api/v3/ads/stats?range=30d&shop=12",
			want: "https_www_etsy_com_api_v3_ads_stats",
		},
		{
			name: "punctuation runs collapse",
			url:  "https://host.test//api//daily--metrics",
			want: "https_host_test_api_daily_metrics",
		},
		{
			name: "already clean",
			url:  "stats",
			want: "stats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpoolBase(tt.url))
		})
	}
}

func TestSpoolBase_KeepsTheTail(t *testing.T) {
	url := "https://host.test/" + strings.Repeat("segment/", 30) + "daily_metrics"

	base := SpoolBase(url)
	assert.Len(t, base, spoolBaseMax)
	assert.True(t, strings.HasSuffix(base, "daily_metrics"),
		"the distinguishing tail of the path survives truncation")
}

func TestSpoolName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 9, 0, time.UTC)

	got := SpoolName("https://host.test/api/stats?x=1", at)
	assert.Equal(t, "https_host_test_api_stats_20240305_143009.json", got)
}
