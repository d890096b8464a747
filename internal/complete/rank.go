// Copyright 2026 The Continuum Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package complete

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Scores of the match classes. Fuzzy matches score their similarity,
// which is at most 1.
const (
	scoreExact  = 4
	scorePrefix = 3
	scoreFold   = 2
)

type scored struct {
	Item
	score float32
}

// rank keeps the items matching prefix and orders them best first: case
// sensitive prefix matches, then case insensitive ones, then fuzzy
// matches by decreasing similarity. Ties are broken by name.
func (e *Engine) rank(items []Item, prefix string) []Item {
	lower := strings.ToLower(prefix)
	var ss []scored
	for _, it := range items {
		s, ok := e.score(it.Filter, prefix, lower)
		if ok {
			ss = append(ss, scored{it, s})
		}
	}
	slices.SortStableFunc(ss, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.ToLower(a.Filter), strings.ToLower(b.Filter)); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	if e.MaxCandidates > 0 && len(ss) > e.MaxCandidates {
		ss = ss[:e.MaxCandidates]
	}
	out := make([]Item, len(ss))
	for i, s := range ss {
		out[i] = s.Item
	}
	return out
}

func (e *Engine) score(name, prefix, lower string) (float32, bool) {
	switch {
	case prefix == "":
		return scorePrefix, true
	case name == prefix:
		return scoreExact, true
	case strings.HasPrefix(name, prefix):
		return scorePrefix, true
	case strings.HasPrefix(strings.ToLower(name), lower):
		return scoreFold, true
	case e.Threshold <= 0:
		return 0, false
	}
	sim, err := edlib.StringsSimilarity(lower, strings.ToLower(name), edlib.JaroWinkler)
	if err != nil || sim < e.Threshold {
		return 0, false
	}
	return sim, true
}
