package errors

import "golang.org/x/text/language"

// supported lists the catalogs in match priority; the first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[Kind]string{
	language.English: {
		KindTimeout:     "Request timed out. Please try again.",
		KindNetwork:     "Unable to reach the server. Check your internet connection.",
		KindHTTP:        "The server encountered an error.",
		KindApplication: "Request failed.",
		KindUnknown:     "An unknown error occurred.",
	},
	language.Indonesian: {
		KindTimeout:     "Request timeout. Silakan coba lagi.",
		KindNetwork:     "Tidak dapat terhubung ke server. Periksa koneksi internet Anda.",
		KindHTTP:        "Terjadi kesalahan pada server",
		KindApplication: "Request gagal",
		KindUnknown:     "Terjadi kesalahan yang tidak diketahui",
	},
}

// MatchLanguage maps any tag onto a supported catalog language.
func MatchLanguage(tag language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// FixedMessage returns the user-facing text for kind in the closest supported language.
func FixedMessage(lang language.Tag, kind Kind) string {
	catalog := catalogs[MatchLanguage(lang)]
	if msg, ok := catalog[kind]; ok {
		return msg
	}
	return catalogs[language.English][KindUnknown]
}
