package docstore

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"
)

type candidate struct {
	raw    json.RawMessage
	fields map[string]any
}

// apply filters, orders and limits decoded documents in place.
func apply(cands []candidate, q Query) ([]json.RawMessage, error) {
	wants := make([]any, len(q.Filters))
	for i, f := range q.Filters {
		n, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		wants[i] = n
	}

	matched := cands[:0]
	for _, c := range cands {
		ok := true
		for i, f := range q.Filters {
			if !reflect.DeepEqual(c.fields[f.Field], wants[i]) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, c)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i].fields[q.OrderBy], matched[j].fields[q.OrderBy])
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]json.RawMessage, len(matched))
	for i, c := range matched {
		out[i] = c.raw
	}
	return out, nil
}

// normalize gives v the shape it has after a JSON round trip, so a filter on
// an int matches the float64 a decoded document holds.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compareValues orders nil first, then numbers, timestamps and strings.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		at, aerr := time.Parse(time.RFC3339Nano, as)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if aerr == nil && berr == nil {
			return at.Compare(bt)
		}
		return strings.Compare(as, bs)
	}
	return 0
}
