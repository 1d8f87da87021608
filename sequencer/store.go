package sequencer

import (
	"iter"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// indexKey orders notes by one of their ticks. The ID breaks ties so that
// notes sharing a tick coexist in the tree.
type indexKey struct {
	tick uint32
	id   NoteID
}

func lessIndexKey(a, b indexKey) bool {
	if a.tick != b.tick {
		return a.tick < b.tick
	}
	return a.id < b.id
}

// NoteStore owns every note. Notes are addressed by NoteID and indexed twice,
// by start tick and by end tick, so that the viewport can find the notes
// touching either edge of the window without scanning.
//
// A note's end tick is part of its index key, so durations never change in
// place: Extend retires the old ID and returns a new one.
type NoteStore struct {
	notes  map[NoteID]Note
	last   NoteID
	starts *btree.BTreeG[indexKey]
	ends   *btree.BTreeG[indexKey]
}

func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes:  make(map[NoteID]Note),
		starts: btree.NewG(16, lessIndexKey),
		ends:   btree.NewG(16, lessIndexKey),
	}
}

// Insert stores a note under a fresh ID.
func (s *NoteStore) Insert(n Note) NoteID {
	n.validate()
	s.last++
	id := s.last
	s.notes[id] = n
	s.starts.ReplaceOrInsert(indexKey{n.Start, id})
	s.ends.ReplaceOrInsert(indexKey{n.End(), id})
	return id
}

// Remove deletes a note. Callers drop their own references first.
func (s *NoteStore) Remove(id NoteID) {
	n, ok := s.notes[id]
	if !ok {
		panic(errors.Errorf("notestore: remove of unknown note %d", id))
	}
	if _, ok := s.starts.Delete(indexKey{n.Start, id}); !ok {
		panic(errors.Errorf("notestore: note %d missing from start index", id))
	}
	if _, ok := s.ends.Delete(indexKey{n.End(), id}); !ok {
		panic(errors.Errorf("notestore: note %d missing from end index", id))
	}
	delete(s.notes, id)
}

// Extend lengthens a note by one tick. The returned ID replaces id, which is
// no longer valid.
func (s *NoteStore) Extend(id NoteID) NoteID {
	n, ok := s.notes[id]
	if !ok {
		panic(errors.Errorf("notestore: extend of unknown note %d", id))
	}
	s.Remove(id)
	n.Duration++
	return s.Insert(n)
}

// Get returns the note stored under id.
func (s *NoteStore) Get(id NoteID) (Note, bool) {
	n, ok := s.notes[id]
	return n, ok
}

func (s *NoteStore) mustGet(id NoteID) Note {
	n, ok := s.notes[id]
	if !ok {
		panic(errors.Errorf("notestore: unknown note %d", id))
	}
	return n
}

// Len returns the number of live notes.
func (s *NoteStore) Len() int { return len(s.notes) }

// ByStart returns the notes starting exactly at tick.
func (s *NoteStore) ByStart(tick uint32) []NoteID {
	return exact(s.starts, tick)
}

// ByEnd returns the notes ending exactly at tick.
func (s *NoteStore) ByEnd(tick uint32) []NoteID {
	return exact(s.ends, tick)
}

func exact(index *btree.BTreeG[indexKey], tick uint32) []NoteID {
	var ids []NoteID
	index.AscendGreaterOrEqual(indexKey{tick: tick}, func(k indexKey) bool {
		if k.tick != tick {
			return false
		}
		ids = append(ids, k.id)
		return true
	})
	return ids
}

// All iterates the notes in start order.
func (s *NoteStore) All() iter.Seq2[NoteID, Note] {
	return func(yield func(NoteID, Note) bool) {
		s.starts.Ascend(func(k indexKey) bool {
			return yield(k.id, s.notes[k.id])
		})
	}
}
