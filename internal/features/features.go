// Package features gives a typed view over the colon-delimited tag strings
// the catalog stores inside a product's feature list ("Region: US",
// "Followers: 10k"). Parsing happens once here instead of ad hoc prefix
// matching at every render site.
package features

import "strings"

// Kind identifies a structured tag encoded in the feature list.
type Kind string

const (
	KindRegion    Kind = "region"
	KindPlatform  Kind = "platform"
	KindAge       Kind = "age"
	KindFollowers Kind = "followers"
)

var kinds = []Kind{KindRegion, KindPlatform, KindAge, KindFollowers}

// Tag is one structured entry.
type Tag struct {
	Kind  Kind
	Value string
}

// Set splits a feature list into its structured tags and the residual
// free-text entries, preserving order.
type Set struct {
	Tags     []Tag
	FreeText []string
}

// Parse classifies each feature string. Matching is prefix-based and
// case-insensitive; the first tag of a kind wins and later duplicates fall
// through to free text.
func Parse(raw []string) Set {
	var set Set
	seen := map[Kind]bool{}
	for _, entry := range raw {
		kind, value, ok := classify(entry)
		if ok && !seen[kind] {
			seen[kind] = true
			set.Tags = append(set.Tags, Tag{Kind: kind, Value: value})
			continue
		}
		set.FreeText = append(set.FreeText, entry)
	}
	return set
}

func classify(entry string) (Kind, string, bool) {
	lower := strings.ToLower(entry)
	for _, kind := range kinds {
		prefix := string(kind) + ":"
		if strings.HasPrefix(lower, prefix) {
			return kind, strings.TrimSpace(entry[len(prefix):]), true
		}
	}
	return "", "", false
}

// Value returns the tag value for a kind, or empty when absent.
func (s Set) Value(kind Kind) string {
	for _, tag := range s.Tags {
		if tag.Kind == kind {
			return tag.Value
		}
	}
	return ""
}

// Has reports whether a tag of the kind is present.
func (s Set) Has(kind Kind) bool {
	for _, tag := range s.Tags {
		if tag.Kind == kind {
			return true
		}
	}
	return false
}

// WithTag returns a copy with the kind set to value; an empty value removes
// the tag.
func (s Set) WithTag(kind Kind, value string) Set {
	out := Set{FreeText: append([]string(nil), s.FreeText...)}
	replaced := false
	for _, tag := range s.Tags {
		if tag.Kind == kind {
			replaced = true
			if value != "" {
				out.Tags = append(out.Tags, Tag{Kind: kind, Value: value})
			}
			continue
		}
		out.Tags = append(out.Tags, tag)
	}
	if !replaced && value != "" {
		out.Tags = append(out.Tags, Tag{Kind: kind, Value: value})
	}
	return out
}

// Encode writes the set back to the wire form the backend stores: structured
// tags first as "Key: Value", then the free-text entries.
func (s Set) Encode() []string {
	out := make([]string, 0, len(s.Tags)+len(s.FreeText))
	for _, tag := range s.Tags {
		out = append(out, titleKind(tag.Kind)+": "+tag.Value)
	}
	out = append(out, s.FreeText...)
	return out
}

func titleKind(kind Kind) string {
	k := string(kind)
	if k == "" {
		return k
	}
	return strings.ToUpper(k[:1]) + k[1:]
}
