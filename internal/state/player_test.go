package state

import (
	"slices"
	"testing"

	"github.com/mlanoe/chorus/internal/catalog"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath(:memory:): %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestLoadPlayerDefaults(t *testing.T) {
	m := openTestManager(t)

	s, err := m.LoadPlayer()
	if err != nil {
		t.Fatalf("LoadPlayer(): %v", err)
	}

	if s.CurrentSongID != 0 {
		t.Errorf("CurrentSongID = %d, want 0", s.CurrentSongID)
	}
	if s.PlaylistName != catalog.AllSongs {
		t.Errorf("PlaylistName = %q, want %q", s.PlaylistName, catalog.AllSongs)
	}
	if s.MasterVolume != 0.5 {
		t.Errorf("MasterVolume = %v, want 0.5", s.MasterVolume)
	}
	if s.SliderVolume != 50 {
		t.Errorf("SliderVolume = %v, want 50", s.SliderVolume)
	}
	if s.Loop || s.Shuffle {
		t.Error("modes default on")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := openTestManager(t)

	in := PlayerState{
		CurrentSongID: 42,
		PlaylistName:  "late night",
		History:       []catalog.SongID{1, 2},
		UserQueue:     []catalog.SongID{3},
		AutoQueue:     []catalog.SongID{4, 5, 6},
		ShuffleQueue:  []catalog.SongID{7},
		Loop:          true,
		Shuffle:       true,
		MasterVolume:  0.8,
		SliderVolume:  35,
	}
	if err := m.SavePlayer(in); err != nil {
		t.Fatalf("SavePlayer(): %v", err)
	}

	out, err := m.LoadPlayer()
	if err != nil {
		t.Fatalf("LoadPlayer(): %v", err)
	}

	if out.CurrentSongID != in.CurrentSongID {
		t.Errorf("CurrentSongID = %d, want %d", out.CurrentSongID, in.CurrentSongID)
	}
	if out.PlaylistName != in.PlaylistName {
		t.Errorf("PlaylistName = %q, want %q", out.PlaylistName, in.PlaylistName)
	}
	for _, q := range []struct {
		name      string
		got, want []catalog.SongID
	}{
		{"history", out.History, in.History},
		{"userQueue", out.UserQueue, in.UserQueue},
		{"autoQueue", out.AutoQueue, in.AutoQueue},
		{"shuffleQueue", out.ShuffleQueue, in.ShuffleQueue},
	} {
		if !slices.Equal(q.got, q.want) {
			t.Errorf("%s = %v, want %v", q.name, q.got, q.want)
		}
	}
	if !out.Loop || !out.Shuffle {
		t.Error("modes lost")
	}
	if out.MasterVolume != in.MasterVolume || out.SliderVolume != in.SliderVolume {
		t.Errorf("volumes = %v/%v, want %v/%v",
			out.MasterVolume, out.SliderVolume, in.MasterVolume, in.SliderVolume)
	}
}

func TestSavePlayerOverwrites(t *testing.T) {
	m := openTestManager(t)

	if err := m.SavePlayer(PlayerState{CurrentSongID: 1, SliderVolume: 10}); err != nil {
		t.Fatal(err)
	}
	if err := m.SavePlayer(PlayerState{CurrentSongID: 2, SliderVolume: 90}); err != nil {
		t.Fatal(err)
	}

	out, err := m.LoadPlayer()
	if err != nil {
		t.Fatal(err)
	}
	if out.CurrentSongID != 2 || out.SliderVolume != 90 {
		t.Errorf("latest checkpoint not read back: %+v", out)
	}
}

func TestSavePlayerWritesEmptyQueuesExplicitly(t *testing.T) {
	m := openTestManager(t)

	if err := m.SavePlayer(PlayerState{History: []catalog.SongID{1}}); err != nil {
		t.Fatal(err)
	}
	if err := m.SavePlayer(PlayerState{}); err != nil {
		t.Fatal(err)
	}

	out, err := m.LoadPlayer()
	if err != nil {
		t.Fatal(err)
	}
	if len(out.History) != 0 {
		t.Errorf("history = %v, want empty after checkpointing cleared state", out.History)
	}
}

func TestLoadPlayerPartialKeys(t *testing.T) {
	m := openTestManager(t)

	_, err := m.DB().Exec(
		`INSERT INTO player_state (key, value) VALUES ('loop', 'true'), ('sliderVolume', '15')`,
	)
	if err != nil {
		t.Fatal(err)
	}

	out, err := m.LoadPlayer()
	if err != nil {
		t.Fatalf("LoadPlayer(): %v", err)
	}
	if !out.Loop {
		t.Error("persisted loop key ignored")
	}
	if out.SliderVolume != 15 {
		t.Errorf("SliderVolume = %v, want 15", out.SliderVolume)
	}
	if out.MasterVolume != 0.5 {
		t.Errorf("missing masterVolume must default to 0.5, got %v", out.MasterVolume)
	}
	if out.PlaylistName != catalog.AllSongs {
		t.Errorf("missing playlist must default, got %q", out.PlaylistName)
	}
}
