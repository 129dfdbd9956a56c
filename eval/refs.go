package eval

import (
	"strconv"
	"strings"

	"github.com/pistole/scraper-parser/buffers"
	"github.com/pistole/scraper-parser/settings"
)

// expandBufferRefs replaces every literal "$$n" in s with B[n]'s
// current value, for n descending from buffers.MaxIndex to 1, so that
// "$$1" never corrupts a still-unexpanded "$$10".
func expandBufferRefs(s string, b *buffers.Bank) string {
	for n := buffers.MaxIndex; n >= 1; n-- {
		token := "$$" + strconv.Itoa(n)
		if strings.Contains(s, token) {
			s = strings.ReplaceAll(s, token, b.Get(n))
		}
	}
	return s
}

// expandSettingRefs replaces every literal "$INFO[key]" in s with the
// corresponding settings value (empty if absent). This runs after
// expandBufferRefs, per the fixed substitution order.
func expandSettingRefs(s string, st settings.Settings) string {
	const prefix = "$INFO["
	var b strings.Builder
	for {
		idx := strings.Index(s, prefix)
		if idx < 0 {
			b.WriteString(s)
			break
		}
		closeIdx := strings.IndexByte(s[idx+len(prefix):], ']')
		if closeIdx < 0 {
			b.WriteString(s)
			break
		}
		closeIdx += idx + len(prefix)
		key := s[idx+len(prefix) : closeIdx]
		b.WriteString(s[:idx])
		val, _ := st.Get(key)
		b.WriteString(val)
		s = s[closeIdx+1:]
	}
	return b.String()
}
