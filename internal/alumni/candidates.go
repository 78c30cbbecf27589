package alumni

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Candidates is an ordered candidate list owned by a single search.
type Candidates struct {
	Items []*Candidate
}

// NewCandidates wraps items without copying them.
func NewCandidates(items []*Candidate) *Candidates {
	return &Candidates{Items: items}
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	if c == nil {
		return nil
	}
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, c.Len())
	if c == nil {
		return ids
	}
	for _, candidate := range c.Items {
		ids = append(ids, candidate.ID)
	}
	return ids
}

// Filter retains candidates for which keep returns true, preserving order.
// It returns the identifiers of the removed candidates.
func (c *Candidates) Filter(keep func(*Candidate) bool) []string {
	if c == nil {
		return nil
	}
	var removed []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if keep(candidate) {
			kept = append(kept, candidate)
			continue
		}
		removed = append(removed, candidate.ID)
	}
	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept
	return removed
}

// Exclude removes candidates whose identifier is listed in ids.
func (c *Candidates) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	return c.Filter(func(candidate *Candidate) bool {
		_, found := skip[candidate.ID]
		return !found
	})
}

// Coverage counts candidates per organization.
func (c *Candidates) Coverage() map[string]int {
	coverage := make(map[string]int)
	if c == nil {
		return coverage
	}
	for _, candidate := range c.Items {
		org := candidate.Organization
		if org == "" {
			org = "unknown"
		}
		coverage[org]++
	}
	return coverage
}

// ReportByOrganization groups a short summary of every candidate under its organization.
func (c *Candidates) ReportByOrganization() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	if c == nil {
		return report
	}
	for _, candidate := range c.Items {
		key := candidate.Organization
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"id":          candidate.ID,
			"name":        candidate.Name,
			"role":        candidate.Title,
			"location":    candidate.Location,
			"match score": fmt.Sprintf("%.2f", candidate.Score),
		})
	}
	return report
}

// Organizations returns the distinct organizations sorted by candidate count, then name.
func (c *Candidates) Organizations() []string {
	coverage := c.Coverage()
	orgs := make([]string, 0, len(coverage))
	for org := range coverage {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool {
		if coverage[orgs[i]] != coverage[orgs[j]] {
			return coverage[orgs[i]] > coverage[orgs[j]]
		}
		return orgs[i] < orgs[j]
	})
	return orgs
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "alumni_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}

	return file.Name(), nil
}
