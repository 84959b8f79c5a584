package card

import (
	"strings"
	"time"
)

// ArchiveExt is the file extension of saved projects.
const ArchiveExt = ".pfp"

// GenerateTimestampName returns the default project name for t:
// "pfoca_<yyyyMMdd_HHmm>.pfp". Two saves within the same minute produce the
// same name, and the later one replaces the earlier.
func GenerateTimestampName(t time.Time) string {
	return "pfoca_" + t.Format("20060102_1504") + ArchiveExt
}

// SanitizeName turns a user-entered project name into a file name: path
// separators and a leading dot become underscores, and the archive extension
// is appended if missing. Names starting with a dot would be hidden from
// listings.
func SanitizeName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if strings.HasPrefix(name, ".") {
		name = "_" + name[1:]
	}
	if !strings.HasSuffix(name, ArchiveExt) {
		name += ArchiveExt
	}
	return name
}

// resolveName picks the file name for a save: the sanitized user name, or
// the timestamp name when none was given.
func resolveName(name string, now time.Time) string {
	if strings.TrimSpace(name) == "" {
		return GenerateTimestampName(now)
	}
	return SanitizeName(name)
}

// layerDisplayName is the default name of a saved decoration layer.
func layerDisplayName(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
