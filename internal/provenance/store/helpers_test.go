package store

import id "delphi/pkg/domain"

func toStrings(ids []id.PropertyID) []string {
	out := make([]string, len(ids))
	for i, pid := range ids {
		out[i] = pid.String()
	}
	return out
}
