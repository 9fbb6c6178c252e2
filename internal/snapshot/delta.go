// Package snapshot — delta computation between two content-root snapshots.
package snapshot

import "sort"

// BuildDelta computes the change set between two snapshots. Either side may
// be nil or empty. Moved documents with identical content are reported as
// renames rather than an add/remove pair.
func BuildDelta(prev, curr *Snapshot) Delta {
	if d, ok := trivialDelta(prev, curr); ok {
		return d
	}

	prevMap := indexByPath(prev.Files)
	currMap := indexByPath(curr.Files)

	d := Delta{}
	for path, pf := range prevMap {
		cf, ok := currMap[path]
		if !ok {
			d.Removed = append(d.Removed, pf)
			continue
		}
		if pf.Hash != cf.Hash {
			d.Changed = append(d.Changed, Change{
				Path:         path,
				HashBefore:   pf.Hash,
				HashAfter:    cf.Hash,
				BlocksBefore: pf.Blocks,
				BlocksAfter:  cf.Blocks,
			})
		}
	}
	for path, cf := range currMap {
		if _, ok := prevMap[path]; !ok {
			d.Added = append(d.Added, cf)
		}
	}

	d.Renamed, d.Removed, d.Added = matchRenames(d.Removed, d.Added)
	sortDelta(&d)
	return d
}

func trivialDelta(prev, curr *Snapshot) (Delta, bool) {
	var d Delta
	switch {
	case curr == nil || len(curr.Files) == 0:
		if prev != nil {
			d.Removed = append(d.Removed, prev.Files...)
			sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Path < d.Removed[j].Path })
		}
		return d, true
	case prev == nil || len(prev.Files) == 0:
		d.Added = append(d.Added, curr.Files...)
		sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Path < d.Added[j].Path })
		return d, true
	default:
		return Delta{}, false
	}
}

func indexByPath(files []DocFile) map[string]DocFile {
	m := make(map[string]DocFile, len(files))
	for _, f := range files {
		m[f.Path] = f
	}
	return m
}

// matchRenames pairs removed and added entries with identical content hashes
// one-to-one. Hashes appearing on several documents at once are left as
// adds/removes rather than guessed at.
func matchRenames(removed, added []DocFile) ([]Rename, []DocFile, []DocFile) {
	remByHash := make(map[string][]DocFile)
	for _, f := range removed {
		remByHash[f.Hash] = append(remByHash[f.Hash], f)
	}
	addByHash := make(map[string][]DocFile)
	for _, f := range added {
		addByHash[f.Hash] = append(addByHash[f.Hash], f)
	}

	var renames []Rename
	paired := make(map[string]struct{})
	for hash, rems := range remByHash {
		adds := addByHash[hash]
		if len(rems) != 1 || len(adds) != 1 {
			continue
		}
		renames = append(renames, Rename{From: rems[0].Path, To: adds[0].Path, Hash: hash})
		paired[hash] = struct{}{}
	}

	keepRemoved := removed[:0:0]
	for _, f := range removed {
		if _, ok := paired[f.Hash]; !ok {
			keepRemoved = append(keepRemoved, f)
		}
	}
	keepAdded := added[:0:0]
	for _, f := range added {
		if _, ok := paired[f.Hash]; !ok {
			keepAdded = append(keepAdded, f)
		}
	}
	return renames, keepRemoved, keepAdded
}

func sortDelta(d *Delta) {
	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Path < d.Added[j].Path })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Path < d.Removed[j].Path })
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Path < d.Changed[j].Path })
	sort.Slice(d.Renamed, func(i, j int) bool {
		if d.Renamed[i].From != d.Renamed[j].From {
			return d.Renamed[i].From < d.Renamed[j].From
		}
		return d.Renamed[i].To < d.Renamed[j].To
	})
}
