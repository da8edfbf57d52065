package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleTabs(t *testing.T) {
	base := []TabKey{TabDetails, TabChecklist, TabComments, TabAttachments}

	cases := []struct {
		name      string
		boardType string
		hasClient bool
		want      []TabKey
	}{
		{"design", "design", false, append(append([]TabKey{}, base...), TabReview, TabTeamRuns)},
		{"video", "video", false, append(append([]TabKey{}, base...), TabReview, TabTeamRuns)},
		{"dev", "dev", false, append(append([]TabKey{}, base...), TabQA, TabTeamRuns)},
		{"events no client", "events", false, append(append([]TabKey{}, base...), TabTeamRuns)},
		{"events with client", "events", true, append(append([]TabKey{}, base...), TabTeamRuns, TabLeads)},
		{"unknown type", "whatever", false, append(append([]TabKey{}, base...), TabTeamRuns)},
		{"dev with client", "dev", true, append(append([]TabKey{}, base...), TabQA, TabTeamRuns, TabLeads)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VisibleTabs(tc.boardType, tc.hasClient))
		})
	}
}

func TestVisibleTabsNeverBothReviewAndQA(t *testing.T) {
	for _, bt := range []string{"design", "video", "dev", "events", "podcast", ""} {
		tabs := VisibleTabs(bt, true)
		hasReview, hasQA := false, false
		for _, tab := range tabs {
			hasReview = hasReview || tab == TabReview
			hasQA = hasQA || tab == TabQA
		}
		assert.False(t, hasReview && hasQA, "board type %q shows both review and qa", bt)
	}
}

func TestResolveActiveTab(t *testing.T) {
	devTabs := VisibleTabs("dev", false)

	// still visible: stays put
	assert.Equal(t, TabQA, ResolveActiveTab(TabQA, devTabs))
	assert.Equal(t, TabComments, ResolveActiveTab(TabComments, devTabs))

	// no longer visible: falls back to details
	assert.Equal(t, TabDetails, ResolveActiveTab(TabReview, devTabs))
	assert.Equal(t, TabDetails, ResolveActiveTab(TabLeads, devTabs))
	assert.Equal(t, TabDetails, ResolveActiveTab(TabKey("bogus"), devTabs))
}

func TestResolveActiveTabAlwaysVisible(t *testing.T) {
	// whatever the combination, the resolved tab is a member of the visible set
	all := []TabKey{TabDetails, TabChecklist, TabComments, TabAttachments, TabReview, TabQA, TabLeads, TabTeamRuns, TabKey("junk")}
	for _, bt := range []string{"design", "video", "dev", "events"} {
		for _, hasClient := range []bool{false, true} {
			visible := VisibleTabs(bt, hasClient)
			for _, active := range all {
				got := ResolveActiveTab(active, visible)
				require.Contains(t, visible, got, "board=%s client=%v active=%s", bt, hasClient, active)
			}
		}
	}
}
