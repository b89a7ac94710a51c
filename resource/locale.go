package resource

import (
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"
)

var current atomic.Pointer[language.Tag]

// SetLocale sets the process wide locale used by Bundle.String.
func SetLocale(tag language.Tag) {
	current.Store(&tag)
}

// ResetLocale clears the locale set by SetLocale so that CurrentLocale
// reads the environment again.
func ResetLocale() {
	current.Store(nil)
}

// CurrentLocale returns the locale set by SetLocale or, when unset, the one
// described by the LC_ALL, LC_MESSAGES and LANG environment variables.
func CurrentLocale() language.Tag {
	if t := current.Load(); t != nil {
		return *t
	}
	return EnvLocale(os.Getenv)
}

// EnvLocale derives a locale from the POSIX locale variables read through
// getenv. It returns language.Und when none is set or parsable.
func EnvLocale(getenv func(string) string) language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			tag, _ := ParsePOSIXLocale(v)
			return tag
		}
	}
	return language.Und
}

// ParsePOSIXLocale converts a POSIX locale name such as "zh_CN.UTF-8" or
// "sr_RS@latin" into a language tag. "C" and "POSIX" map to language.Und.
func ParsePOSIXLocale(s string) (language.Tag, bool) {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
