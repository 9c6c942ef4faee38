package store

import "sort"

// trackSetFile is the on-disk shape of a track set: {"tracks": [...]}.
type trackSetFile struct {
	Tracks []string `json:"tracks"`
}

// TrackSet is a mutable set of track identifiers.
type TrackSet struct {
	ids map[string]struct{}
}

// NewTrackSet creates a set containing the given identifiers.
func NewTrackSet(ids ...string) *TrackSet {
	s := &TrackSet{ids: make(map[string]struct{}, len(ids))}
	s.Add(ids...)
	return s
}

// LoadTrackSet reads a {"tracks": [...]} file, returning an empty set if the
// file does not exist.
func LoadTrackSet(path string) (*TrackSet, error) {
	var file trackSetFile
	if err := ReadJSONFile(path, &file); err != nil {
		return nil, err
	}
	return NewTrackSet(file.Tracks...), nil
}

// Has reports whether id is in the set.
func (s *TrackSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add inserts the given identifiers.
func (s *TrackSet) Add(ids ...string) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Len reports the set size.
func (s *TrackSet) Len() int {
	return len(s.ids)
}

// IDs returns the members in sorted order, for deterministic files and logs.
func (s *TrackSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save writes the set to path in the {"tracks": [...]} format.
func (s *TrackSet) Save(path string) error {
	return WriteJSONFile(path, trackSetFile{Tracks: s.IDs()})
}

// TrackState tracks the three durable track sets the filter pipeline depends
// on: identifiers already evaluated (processed), identifiers the playlist
// owner manually removed from the destination (removed, append-only, never
// re-add), and the destination membership observed at the end of the last
// committed run (snapshot).
//
// All mutations are in-memory; [TrackState.Commit] is the single persistence
// step and must be skipped entirely under dry-run.
type TrackState struct {
	Processed *TrackSet
	Removed   *TrackSet
	Snapshot  *TrackSet

	processedPath string
	removedPath   string
	snapshotPath  string
}

// LoadTrackState loads the three track-set files, treating missing files as
// empty sets.
func LoadTrackState(processedPath, removedPath, snapshotPath string) (*TrackState, error) {
	processed, err := LoadTrackSet(processedPath)
	if err != nil {
		return nil, err
	}

	removed, err := LoadTrackSet(removedPath)
	if err != nil {
		return nil, err
	}

	snapshot, err := LoadTrackSet(snapshotPath)
	if err != nil {
		return nil, err
	}

	return &TrackState{
		Processed:     processed,
		Removed:       removed,
		Snapshot:      snapshot,
		processedPath: processedPath,
		removedPath:   removedPath,
		snapshotPath:  snapshotPath,
	}, nil
}

// DetectRemoved returns the identifiers present in the last snapshot but
// absent from the current destination membership, i.e. tracks a human
// deleted since the previous committed run.
func (s *TrackState) DetectRemoved(current *TrackSet) []string {
	var removed []string
	for _, id := range s.Snapshot.IDs() {
		if !current.Has(id) {
			removed = append(removed, id)
		}
	}
	return removed
}

// IsExcluded reports whether id should not be evaluated again: either it was
// manually removed from the destination (hard block) or it has already been
// processed in a previous run.
func (s *TrackState) IsExcluded(id string) bool {
	return s.Removed.Has(id) || s.Processed.Has(id)
}

// MarkProcessed records that id has been evaluated by the filter pipeline.
func (s *TrackState) MarkProcessed(id string) {
	s.Processed.Add(id)
}

// MarkRemoved permanently excludes the given identifiers from re-addition.
func (s *TrackState) MarkRemoved(ids ...string) {
	s.Removed.Add(ids...)
}

// ReplaceSnapshot overwrites the destination snapshot with the current
// membership.
func (s *TrackState) ReplaceSnapshot(current *TrackSet) {
	s.Snapshot = NewTrackSet(current.IDs()...)
}

// Commit writes all three sets to their backing files.
func (s *TrackState) Commit() error {
	if err := s.Processed.Save(s.processedPath); err != nil {
		return err
	}
	if err := s.Removed.Save(s.removedPath); err != nil {
		return err
	}
	return s.Snapshot.Save(s.snapshotPath)
}
