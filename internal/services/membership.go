package services

import "github.com/So-lol/ace-website-sub001/internal/db/repositories"

// MemberSet is a family's membership: its heads, its aunts and uncles and
// every participant of its pairings, each person once, in first-seen order.
// It is recomputed on every read and never stored.
func MemberSet(headIDs, auntUncleIDs []string, pairings []repositories.PairingMembers) []string {
	seen := map[string]struct{}{}
	members := []string{}
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	for _, id := range headIDs {
		add(id)
	}
	for _, id := range auntUncleIDs {
		add(id)
	}
	for _, p := range pairings {
		add(p.MentorID)
		for _, id := range p.MenteeIDs {
			add(id)
		}
	}
	return members
}
