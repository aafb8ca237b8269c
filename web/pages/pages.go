// Package pages holds the server-rendered HTML views.
package pages

//go:generate go tool templ generate

import "strconv"

type AlbumListItem struct {
	Name     string
	Href     string
	Records  int
	Selected bool
}

type EntryItem struct {
	Date        string
	Description string
	ImageURL    string
	Tags        []string
}

type AlbumViewData struct {
	Name    string
	Entries []EntryItem
}

func recordCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return strconv.Itoa(n) + " entries"
}
