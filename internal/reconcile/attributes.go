// Package reconcile holds the pure functions that reconcile edited state
// against what the remote service last reported.
package reconcile

import "sort"

// Row is one name/value pair as currently shown in the attribute editor.
// Names are free text and may repeat.
type Row struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result is the set of changes that moves a baseline to the edited state.
type Result struct {
	Upserts  map[string]string `json:"upserts"`
	Removals []string          `json:"removals"`
}

// Attributes computes the upserts and removals that turn baseline into rows.
// The last row for a given name wins. Every edited name is upserted, even
// when its value matches the baseline; use PruneUnchanged to drop no-ops.
// Removals are sorted by name.
func Attributes(baseline map[string]string, rows []Row) Result {
	upserts := make(map[string]string, len(rows))
	visited := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		upserts[r.Name] = r.Value
		visited[r.Name] = struct{}{}
	}

	removals := []string{}
	for name := range baseline {
		if _, ok := visited[name]; !ok {
			removals = append(removals, name)
		}
	}
	sort.Strings(removals)

	return Result{Upserts: upserts, Removals: removals}
}

// RowsOf returns the baseline as rows ordered by name.
func RowsOf(baseline map[string]string) []Row {
	rows := make([]Row, 0, len(baseline))
	for name, value := range baseline {
		rows = append(rows, Row{Name: name, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// Apply returns a copy of baseline with the result's upserts and removals
// applied. The two sets never overlap, so order does not matter.
func (r Result) Apply(baseline map[string]string) map[string]string {
	out := make(map[string]string, len(baseline)+len(r.Upserts))
	for k, v := range baseline {
		out[k] = v
	}
	for k, v := range r.Upserts {
		out[k] = v
	}
	for _, k := range r.Removals {
		delete(out, k)
	}
	return out
}

// PruneUnchanged returns a copy of the result without upserts whose value
// already matches baseline.
func (r Result) PruneUnchanged(baseline map[string]string) Result {
	upserts := make(map[string]string, len(r.Upserts))
	for k, v := range r.Upserts {
		if old, ok := baseline[k]; ok && old == v {
			continue
		}
		upserts[k] = v
	}
	removals := make([]string, len(r.Removals))
	copy(removals, r.Removals)
	return Result{Upserts: upserts, Removals: removals}
}

// Empty reports whether the result carries no changes.
func (r Result) Empty() bool {
	return len(r.Upserts) == 0 && len(r.Removals) == 0
}
