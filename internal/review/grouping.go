// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review turns ranked, clustered candidates into a structured
// literature review: thematic groups first, then an optional synthesis
// pass over the group representatives. See docs/ARCHITECTURE.md
// § Review Synthesis.
package review

import (
	"sort"
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

// maxGroupKeywords caps how many topic keywords label a group.
const maxGroupKeywords = 3

// BuildGroups organizes ranked candidates into their communities.
// Groups are ordered by size descending, ties broken by lower
// community id. Each group is labeled with its most frequent topic
// keywords and carries up to repsPerGroup representatives, taken in
// the candidates' existing (hybrid-ranked) order. Candidates that were
// never clustered (community -1) form their own group.
func BuildGroups(candidates []types.Candidate, repsPerGroup int) []types.Group {
	if len(candidates) == 0 {
		return nil
	}
	if repsPerGroup <= 0 {
		repsPerGroup = 3
	}

	byCommunity := make(map[int][]types.Candidate)
	for _, c := range candidates {
		byCommunity[c.Community] = append(byCommunity[c.Community], c)
	}

	ids := make([]int, 0, len(byCommunity))
	for id := range byCommunity {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := len(byCommunity[ids[i]]), len(byCommunity[ids[j]])
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	groups := make([]types.Group, 0, len(ids))
	for _, id := range ids {
		members := byCommunity[id]
		reps := members
		if len(reps) > repsPerGroup {
			reps = reps[:repsPerGroup]
		}
		groups = append(groups, types.Group{
			Community:       id,
			Size:            len(members),
			Keywords:        topicKeywords(members),
			Representatives: append([]types.Candidate(nil), reps...),
		})
	}
	return groups
}

// topicKeywords returns the most frequent topics among the members,
// most common first, ties broken alphabetically.
func topicKeywords(members []types.Candidate) []string {
	counts := make(map[string]int)
	for _, m := range members {
		seen := make(map[string]bool)
		for _, topic := range m.Topics {
			key := strings.TrimSpace(topic)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(counts))
	for k := range counts {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > maxGroupKeywords {
		keywords = keywords[:maxGroupKeywords]
	}
	return keywords
}
