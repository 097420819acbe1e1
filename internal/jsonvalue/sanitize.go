package jsonvalue

import "strings"

// StripURLs returns a copy of v with every object member whose key ends in
// "url" removed, at any depth. Arrays are rebuilt element by element and
// scalars are returned as is. The result is meant for human-readable
// output of API payloads.
func StripURLs(v Value) Value {
	switch v.kind {
	case Array:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = StripURLs(item)
		}
		return ArrayValue(items...)
	case Object:
		members := make([]Member, 0, len(v.members))
		for _, m := range v.members {
			if strings.HasSuffix(m.Key, "url") {
				continue
			}
			members = append(members, Member{Key: m.Key, Value: StripURLs(m.Value)})
		}
		return Value{kind: Object, members: members}
	default:
		return v
	}
}
