package diagram

import "strings"

// SanitizeName converts an arbitrary display name into the identifier
// used to name and cross-reference generated resources: lowercase, any
// run of characters outside [a-z0-9] collapsed to a single underscore,
// leading and trailing underscores stripped. Idempotent.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return b.String()
}
