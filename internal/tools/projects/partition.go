package projects

// SearchResult splits a formatted project list by lifecycle state.
//
// Active holds projects that are neither archived nor deleted. Archived and
// Deleted are filled independently from their flags, so a project flagged
// both archived and deleted is listed in both.
type SearchResult struct {
	Active   []FormattedProject `json:"active"`
	Archived []FormattedProject `json:"archived"`
	Deleted  []FormattedProject `json:"deleted"`
}

// Partition buckets projects, preserving input order within each bucket.
func Partition(projects []FormattedProject) SearchResult {
	res := SearchResult{
		Active:   []FormattedProject{},
		Archived: []FormattedProject{},
		Deleted:  []FormattedProject{},
	}
	for _, p := range projects {
		if !p.Archived && !p.Deleted {
			res.Active = append(res.Active, p)
		}
		if p.Archived {
			res.Archived = append(res.Archived, p)
		}
		if p.Deleted {
			res.Deleted = append(res.Deleted, p)
		}
	}
	return res
}
