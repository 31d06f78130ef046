package state

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/mlanoe/chorus/internal/catalog"
	dbutil "github.com/mlanoe/chorus/internal/db"
)

// Persisted key layout. Each field is independently readable; a missing
// key falls back to its default rather than failing the load.
const (
	keyCurrentSongID = "currentSongId"
	keyPlaylistName  = "currentPlaylistName"
	keyHistory       = "history"
	keyUserQueue     = "userQueue"
	keyAutoQueue     = "autoQueue"
	keyShuffleQueue  = "shuffleQueue"
	keyLoop          = "loop"
	keyShuffle       = "shuffle"
	keyMasterVolume  = "masterVolume"
	keySliderVolume  = "sliderVolume"
)

// PlayerState is the persisted snapshot of the playback engine.
type PlayerState struct {
	CurrentSongID catalog.SongID // 0 when no song is loaded
	PlaylistName  string
	History       []catalog.SongID
	UserQueue     []catalog.SongID
	AutoQueue     []catalog.SongID
	ShuffleQueue  []catalog.SongID
	Loop          bool
	Shuffle       bool
	MasterVolume  float64 // 0-1
	SliderVolume  float64 // 0-100
}

// DefaultPlayerState returns the state used when nothing was persisted.
func DefaultPlayerState() PlayerState {
	return PlayerState{
		PlaylistName: catalog.AllSongs,
		MasterVolume: 0.5,
		SliderVolume: 50,
	}
}

// LoadPlayer reads the persisted player state, substituting defaults for
// any missing key.
func (m *Manager) LoadPlayer() (PlayerState, error) {
	s := DefaultPlayerState()

	rows, err := m.db.Query(`SELECT key, value FROM player_state`)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return s, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	if v, ok := values[keyCurrentSongID]; ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return s, err
		}
		s.CurrentSongID = catalog.SongID(id)
	}
	if v, ok := values[keyPlaylistName]; ok {
		s.PlaylistName = v
	}
	for _, f := range []struct {
		key string
		dst *[]catalog.SongID
	}{
		{keyHistory, &s.History},
		{keyUserQueue, &s.UserQueue},
		{keyAutoQueue, &s.AutoQueue},
		{keyShuffleQueue, &s.ShuffleQueue},
	} {
		if v, ok := values[f.key]; ok {
			if err := json.Unmarshal([]byte(v), f.dst); err != nil {
				return s, err
			}
		}
	}
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{keyLoop, &s.Loop},
		{keyShuffle, &s.Shuffle},
	} {
		if v, ok := values[f.key]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return s, err
			}
			*f.dst = b
		}
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{keyMasterVolume, &s.MasterVolume},
		{keySliderVolume, &s.SliderVolume},
	} {
		if v, ok := values[f.key]; ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return s, err
			}
			*f.dst = n
		}
	}

	return s, nil
}

// SavePlayer checkpoints the full player state. All keys are written in
// one transaction so a restart after a checkpoint never observes a
// partially applied transition.
func (m *Manager) SavePlayer(s PlayerState) error {
	history, err := json.Marshal(idsOrEmpty(s.History))
	if err != nil {
		return err
	}
	userQueue, err := json.Marshal(idsOrEmpty(s.UserQueue))
	if err != nil {
		return err
	}
	autoQueue, err := json.Marshal(idsOrEmpty(s.AutoQueue))
	if err != nil {
		return err
	}
	shuffleQueue, err := json.Marshal(idsOrEmpty(s.ShuffleQueue))
	if err != nil {
		return err
	}

	values := map[string]string{
		keyCurrentSongID: strconv.FormatInt(int64(s.CurrentSongID), 10),
		keyPlaylistName:  s.PlaylistName,
		keyHistory:       string(history),
		keyUserQueue:     string(userQueue),
		keyAutoQueue:     string(autoQueue),
		keyShuffleQueue:  string(shuffleQueue),
		keyLoop:          strconv.FormatBool(s.Loop),
		keyShuffle:       strconv.FormatBool(s.Shuffle),
		keyMasterVolume:  strconv.FormatFloat(s.MasterVolume, 'g', -1, 64),
		keySliderVolume:  strconv.FormatFloat(s.SliderVolume, 'g', -1, 64),
	}

	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO player_state (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for k, v := range values {
			if _, err := stmt.Exec(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func idsOrEmpty(ids []catalog.SongID) []catalog.SongID {
	if ids == nil {
		return []catalog.SongID{}
	}
	return ids
}
