package main

import (
	"regexp"
	"sort"
	"strings"
)

// GroupComments partitions a flat comment list into two-level threads:
// top-level comments newest-first, replies within a thread oldest-first.
// Replies whose parent is itself a reply are attached to that reply's
// thread root so no comment is lost; deeper nesting is never rendered.
func GroupComments(comments []Comment) []CommentThread {
	byID := make(map[int64]Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	// resolve each reply to the top-level root of its parent chain
	rootOf := func(c Comment) int64 {
		seen := map[int64]bool{}
		cur := c
		for cur.ParentID != nil && !seen[cur.ID] {
			seen[cur.ID] = true
			p, ok := byID[*cur.ParentID]
			if !ok {
				return *cur.ParentID
			}
			cur = p
		}
		return cur.ID
	}

	replies := make(map[int64][]Comment)
	var tops []Comment
	for _, c := range comments {
		if c.ParentID == nil {
			tops = append(tops, c)
			continue
		}
		root := rootOf(c)
		replies[root] = append(replies[root], c)
	}

	sort.Slice(tops, func(i, j int) bool {
		if !tops[i].CreatedAt.Equal(tops[j].CreatedAt) {
			return tops[i].CreatedAt.After(tops[j].CreatedAt)
		}
		return tops[i].ID > tops[j].ID
	})

	out := make([]CommentThread, 0, len(tops))
	for _, t := range tops {
		rs := replies[t.ID]
		sort.Slice(rs, func(i, j int) bool {
			if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
				return rs[i].CreatedAt.Before(rs[j].CreatedAt)
			}
			return rs[i].ID < rs[j].ID
		})
		out = append(out, CommentThread{Comment: t, Replies: rs})
	}
	return out
}

var mentionRe = regexp.MustCompile(`@([\p{L}\d][\p{L}\d._-]*)`)

// ExtractMentions matches @DisplayName tokens against known profiles and
// returns the matched profile ids, deduplicated, in order of appearance.
// Matching is case-insensitive on the first name token of the display name
// and on the full name with spaces removed.
func ExtractMentions(body string, profiles []User) []int64 {
	if len(profiles) == 0 {
		return nil
	}
	byToken := make(map[string]int64)
	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		byToken[strings.ToLower(strings.ReplaceAll(name, " ", ""))] = p.ID
		if first, _, found := strings.Cut(name, " "); found {
			if _, taken := byToken[strings.ToLower(first)]; !taken {
				byToken[strings.ToLower(first)] = p.ID
			}
		} else {
			byToken[strings.ToLower(name)] = p.ID
		}
	}
	var out []int64
	seen := map[int64]bool{}
	for _, m := range mentionRe.FindAllStringSubmatch(body, -1) {
		if id, ok := byToken[strings.ToLower(m[1])]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
