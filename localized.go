package imdf

import (
	"sort"

	"golang.org/x/text/language"
)

// LocalizedName maps BCP 47 language tags to text, e.g. {"en": "Gate A"}.
type LocalizedName map[string]string

// Best returns the entry that best matches the preferred languages.
// Without preferences English is preferred. Keys that are not valid language
// tags are only used when no valid tag exists. An empty name yields "".
func (n LocalizedName) Best(preferred ...language.Tag) string {
	if len(n) == 0 {
		return ""
	}

	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]language.Tag, 0, len(keys))
	tagKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		tagKeys = append(tagKeys, k)
	}
	if len(tags) == 0 {
		return n[keys[0]]
	}

	if len(preferred) == 0 {
		preferred = []language.Tag{language.English}
	}

	// Put English first so it becomes the matcher's fallback.
	for i, tag := range tags {
		if base, _ := tag.Base(); base.String() == "en" && i > 0 {
			tags[0], tags[i] = tags[i], tags[0]
			tagKeys[0], tagKeys[i] = tagKeys[i], tagKeys[0]
			break
		}
	}

	_, idx, _ := language.NewMatcher(tags).Match(preferred...)
	return n[tagKeys[idx]]
}

// String returns the English (or best available) text.
func (n LocalizedName) String() string {
	return n.Best()
}
