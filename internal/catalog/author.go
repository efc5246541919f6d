// internal/catalog/author.go
package catalog

// Author is a forecast publisher. The set is closed: catalog directories that
// do not name a known author are not offered.
type Author string

const (
	AuthorBankOfRussia Author = "Банк России"
	AuthorMinFin       Author = "Минфин"
	AuthorMinEcon      Author = "МЭР"
	AuthorAnalysts     Author = "Аналитики"
)

var knownAuthors = []Author{AuthorBankOfRussia, AuthorMinFin, AuthorMinEcon, AuthorAnalysts}

// ParseAuthor maps a catalog directory name onto a known author.
func ParseAuthor(name string) (Author, bool) {
	for _, a := range knownAuthors {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

func (a Author) String() string {
	return string(a)
}

// SupportsLatestBaseline reports whether the "last baseline" shortcut is
// offered for this author.
func (a Author) SupportsLatestBaseline() bool {
	return a == AuthorBankOfRussia
}

// RoundsForecasts reports whether forecast cells are shown rounded to one
// digit instead of verbatim.
func (a Author) RoundsForecasts() bool {
	return a == AuthorMinEcon || a == AuthorMinFin
}
