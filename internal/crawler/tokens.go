package crawler

import (
	"sort"
	"strconv"
	"strings"
)

// substituteTokens replaces every "${NAME}" placeholder in s with the
// matching value, leaving unknown placeholders untouched.
func substituteTokens(s string, values map[string]string) string {
	for name, value := range values {
		s = strings.ReplaceAll(s, "${"+name+"}", value)
	}

	return s
}

// expandManualURLs applies spec.md §4.7.1's counter-template expansion
// to the configured manual URL queue: local counters multiply only the
// template(s) whose placeholder they match, global counters multiply
// every template in the set, and the result is sorted and deduplicated.
// Each produced entry keeps the ReCrawl flag of the manual URL it was
// expanded from.
func expandManualURLs(manual []ManualURL, counters []Counter) []ManualURL {
	var local, global []Counter

	for _, c := range counters {
		if c.Global {
			global = append(global, c)
		} else {
			local = append(local, c)
		}
	}

	var out []ManualURL

	for _, m := range manual {
		entries := []ManualURL{m}

		for _, c := range local {
			if !strings.Contains(m.Template, placeholder(c.Variable)) {
				continue
			}

			entries = expandCounterManual(entries, c)
		}

		out = append(out, entries...)
	}

	for _, c := range global {
		out = expandCounterManual(out, c)
	}

	return dedupSortedManual(out)
}

func placeholder(name string) string {
	return "${" + name + "}"
}

// expandCounterManual expands one counter across a set of manual URL
// entries, preserving each entry's ReCrawl flag across substitution.
// used by expandManualURLs for both its local and global passes.
func expandCounterManual(entries []ManualURL, c Counter) []ManualURL {
	values := counterRange(c)
	if len(values) == 0 {
		return entries
	}

	result := make([]ManualURL, 0, len(entries)*len(values))

	for _, e := range entries {
		if !strings.Contains(e.Template, placeholder(c.Variable)) {
			result = append(result, e)
			continue
		}

		for _, v := range values {
			s := strings.ReplaceAll(e.Template, placeholder(c.Variable), strconv.Itoa(v))
			if c.AliasName != "" {
				s = strings.ReplaceAll(s, placeholder(c.AliasName), strconv.Itoa(v+c.AliasAdd))
			}

			result = append(result, ManualURL{Template: s, ReCrawl: e.ReCrawl})
		}
	}

	return result
}

func dedupSortedManual(in []ManualURL) []ManualURL {
	seen := make(map[string]bool, len(in))

	out := make([]ManualURL, 0, len(in))

	for _, e := range in {
		if seen[e.Template] {
			continue
		}

		seen[e.Template] = true
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Template < out[j].Template })

	return out
}

func counterRange(c Counter) []int {
	step := c.Step
	if step == 0 {
		return []int{c.Start}
	}

	var out []int

	if step > 0 {
		for v := c.Start; v <= c.End; v += step {
			out = append(out, v)
		}
	} else {
		for v := c.Start; v >= c.End; v += step {
			out = append(out, v)
		}
	}

	return out
}

