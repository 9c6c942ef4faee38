// package models defines the data transfer objects shared by the Tidal
// service layer and the curation engine.
package models

// Track represents a Tidal track.
//
// The identifier is owned by Tidal and treated as opaque; it is the key used
// throughout the processed/removed/snapshot state sets.
type Track struct {
	ID     string
	Artist string
	Title  string
}

// Playlist represents playlist metadata from Tidal.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
}
