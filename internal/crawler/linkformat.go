package crawler

import "strings"

// linkFormatEntry is one comma-separated member of an
// "application/link-format" timemap response: <uri>; rel="..."; datetime="...".
type linkFormatEntry struct {
	URI      string
	Rel      string
	Datetime string
}

// parseLinkFormat parses the Memento timemap body (spec.md §4.7.2 step
// 1). It is deliberately forgiving: a member missing a parameter simply
// leaves that field empty rather than erroring the whole timemap out.
func parseLinkFormat(body []byte) []linkFormatEntry {
	var entries []linkFormatEntry

	for _, member := range splitTopLevel(string(body), ',') {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}

		entries = append(entries, parseLinkFormatMember(member))
	}

	return entries
}

// splitTopLevel splits s on sep, ignoring occurrences of sep inside
// angle brackets or double quotes (both of which appear in a
// link-format member's own syntax).
func splitTopLevel(s string, sep byte) []string {
	var (
		parts      []string
		depth      int
		inQuotes   bool
		start      int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '"':
			inQuotes = !inQuotes
		default:
			if s[i] == sep && depth == 0 && !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	parts = append(parts, s[start:])

	return parts
}

func parseLinkFormatMember(member string) linkFormatEntry {
	var e linkFormatEntry

	segments := strings.Split(member, ";")

	if len(segments) > 0 {
		uri := strings.TrimSpace(segments[0])
		e.URI = strings.Trim(uri, "<>")
	}

	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)

		key, value, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "rel":
			e.Rel = value
		case "datetime":
			e.Datetime = value
		}
	}

	return e
}
