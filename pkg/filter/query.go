package filter

import (
	"net/url"
	"strings"

	"github.com/matzehuels/extgraph/pkg/graph"
)

// URL query parameter names.
const (
	ParamView                              = "view"
	ParamContentProviders                  = "contentProviders"
	ParamContentConsumers                  = "contentConsumers"
	ParamExtensionPoints                   = "extensionPoints"
	ParamContentConsumersForExtensionPoint = "contentConsumersForExtensionPoint"
)

// ParseList splits a comma-separated parameter, trimming blanks and
// dropping empty entries.
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of ParseList.
func JoinList(ids []string) string {
	return strings.Join(ids, ",")
}

// ParseQuery reads the mode and selection from URL query values. An unknown
// or missing view falls back to the default mode. Repeated parameters are
// merged.
func ParseQuery(q url.Values) (graph.Mode, Selection) {
	mode := graph.ModeOrDefault(q.Get(ParamView))
	sel := Selection{
		ContentProviders:                  parseParam(q, ParamContentProviders),
		ContentConsumers:                  parseParam(q, ParamContentConsumers),
		ExtensionPoints:                   parseParam(q, ParamExtensionPoints),
		ContentConsumersForExtensionPoint: parseParam(q, ParamContentConsumersForExtensionPoint),
	}
	return mode, sel
}

func parseParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		out = append(out, ParseList(v)...)
	}
	return out
}

// Encode writes the mode and selection as URL query values. Empty
// dimensions are omitted.
func (s Selection) Encode(mode graph.Mode) url.Values {
	q := url.Values{}
	q.Set(ParamView, string(mode))
	setParam(q, ParamContentProviders, s.ContentProviders)
	setParam(q, ParamContentConsumers, s.ContentConsumers)
	setParam(q, ParamExtensionPoints, s.ExtensionPoints)
	setParam(q, ParamContentConsumersForExtensionPoint, s.ContentConsumersForExtensionPoint)
	return q
}

func setParam(q url.Values, key string, ids []string) {
	if len(ids) > 0 {
		q.Set(key, JoinList(ids))
	}
}
