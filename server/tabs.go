package main

type TabKey string

const (
	TabDetails     TabKey = "details"
	TabChecklist   TabKey = "checklist"
	TabComments    TabKey = "comments"
	TabAttachments TabKey = "attachments"
	TabReview      TabKey = "review"
	TabQA          TabKey = "qa"
	TabLeads       TabKey = "leads"
	TabTeamRuns    TabKey = "team_runs"
)

// defaultTab is where the active tab falls back whenever it leaves the
// visible set.
const defaultTab = TabDetails

// VisibleTabs derives the ordered tab set from the board type and whether
// the card links to a client. Pure function, no I/O.
func VisibleTabs(boardType string, hasClient bool) []TabKey {
	tabs := []TabKey{TabDetails, TabChecklist, TabComments, TabAttachments}
	switch boardType {
	case "design", "video":
		tabs = append(tabs, TabReview)
	case "dev":
		tabs = append(tabs, TabQA)
	}
	tabs = append(tabs, TabTeamRuns)
	if hasClient {
		tabs = append(tabs, TabLeads)
	}
	return tabs
}

// ResolveActiveTab keeps active when still visible and falls back to the
// default tab otherwise. Never returns a key outside visible.
func ResolveActiveTab(active TabKey, visible []TabKey) TabKey {
	for _, t := range visible {
		if t == active {
			return active
		}
	}
	return defaultTab
}
