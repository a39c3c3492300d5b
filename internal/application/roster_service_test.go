package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-portal/internal/attendance"
)

func rosterPlayer(id, first, last string, teams ...attendance.Team) Player {
	return Player{Player: attendance.Player{ID: id, FirstName: first, LastName: last, Teams: teams}}
}

func TestRosterService_ListPlayers_SpanishOrder(t *testing.T) {
	t.Parallel()

	players := newPlayerRepoStub(
		rosterPlayer("1", "Zoe", "Ñuñez", attendance.TeamAscenso),
		rosterPlayer("2", "ana", "Nuñez", attendance.TeamAscenso),
		rosterPlayer("3", "Bea", "nunez", attendance.TeamAscenso),
		rosterPlayer("4", "Carla", "Álvarez", attendance.TeamAscenso),
		rosterPlayer("5", "Dani", "Oyarzún", attendance.TeamEscuela),
	)
	svc := NewRosterService(players, nil, time.Minute, time.Now)

	list, err := svc.ListPlayers(context.Background(), Principal{UserID: "1"}, "ascenso")
	if err != nil {
		t.Fatalf("ListPlayers returned error: %v", err)
	}
	var ids []string
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	// Ñ is its own letter after N; accents and case are ignored.
	want := []string{"4", "3", "2", "1"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}

	all, err := svc.ListPlayers(context.Background(), Principal{UserID: "1"}, "")
	if err != nil {
		t.Fatalf("ListPlayers returned error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected the whole club, got %d players", len(all))
	}

	if _, err := svc.ListPlayers(context.Background(), Principal{UserID: "1"}, "primera"); err == nil {
		t.Fatalf("expected validation error for unknown team")
	}
	if _, err := svc.ListPlayers(context.Background(), Principal{}, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRosterService_CreatePlayer(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: "admin", IsAdmin: true}
	users := newUserRepoStub(UserCredentials{User: User{ID: "u-1", Email: "ana@club.cl"}})

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc := NewRosterService(newPlayerRepoStub(), users, time.Minute, time.Now)
		_, err := svc.CreatePlayer(context.Background(), CreatePlayerParams{
			Principal: Principal{UserID: "u-1"},
			UserID:    "u-1",
			Input:     PlayerInput{FirstName: "Ana", LastName: "Aguirre", Teams: []string{"ascenso"}},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates input", func(t *testing.T) {
		t.Parallel()
		svc := NewRosterService(newPlayerRepoStub(), users, time.Minute, time.Now)
		_, err := svc.CreatePlayer(context.Background(), CreatePlayerParams{
			Principal: admin,
			UserID:    "missing",
			Input:     PlayerInput{FirstName: " ", LastName: "Aguirre", Teams: []string{"primera"}},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["first_name"] != "first_name is required" {
			t.Fatalf("expected first_name error, got %v", vErr.FieldErrors)
		}
		if vErr.FieldErrors["teams"] != "teams is invalid" {
			t.Fatalf("expected teams error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires an existing account", func(t *testing.T) {
		t.Parallel()
		svc := NewRosterService(newPlayerRepoStub(), users, time.Minute, time.Now)
		_, err := svc.CreatePlayer(context.Background(), CreatePlayerParams{
			Principal: admin,
			UserID:    "missing",
			Input:     PlayerInput{FirstName: "Ana", LastName: "Aguirre", Teams: []string{"ascenso"}},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["user_id"] != "user_id is invalid" {
			t.Fatalf("expected user_id validation error, got %v", err)
		}
	})

	t.Run("persists, invalidates the cache and notifies", func(t *testing.T) {
		t.Parallel()
		players := newPlayerRepoStub()
		listener := &rosterListenerStub{}
		now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		svc := NewRosterService(players, users, time.Minute, fixedClock(now))
		svc.SetChangeListener(listener)

		if roster, _ := svc.TeamRoster(context.Background(), attendance.TeamAscenso); len(roster) != 0 {
			t.Fatalf("expected empty roster before create")
		}

		photo := "  https://club.cl/ana.jpg "
		player, err := svc.CreatePlayer(context.Background(), CreatePlayerParams{
			Principal: admin,
			UserID:    "u-1",
			Input: PlayerInput{
				FirstName: " Ana ",
				LastName:  "Aguirre",
				PhotoURL:  &photo,
				Teams:     []string{"jugadoras-ascenso", "ascenso", "escuela"},
			},
		})
		if err != nil {
			t.Fatalf("CreatePlayer returned error: %v", err)
		}
		if player.ID != "u-1" || player.FirstName != "Ana" || player.PhotoURL != "https://club.cl/ana.jpg" {
			t.Fatalf("unexpected player %+v", player)
		}
		if len(player.Teams) != 2 {
			t.Fatalf("expected deduplicated teams, got %v", player.Teams)
		}
		if !player.CreatedAt.Equal(now) {
			t.Fatalf("expected creation time from clock, got %v", player.CreatedAt)
		}

		roster, err := svc.TeamRoster(context.Background(), attendance.TeamAscenso)
		if err != nil {
			t.Fatalf("TeamRoster returned error: %v", err)
		}
		if len(roster) != 1 {
			t.Fatalf("expected cache to be invalidated after create, got %d players", len(roster))
		}
		if len(listener.teams) != 1 || len(listener.teams[0]) != 2 {
			t.Fatalf("expected listener to receive both teams, got %v", listener.teams)
		}

		_, err = svc.CreatePlayer(context.Background(), CreatePlayerParams{
			Principal: admin,
			UserID:    "u-1",
			Input:     PlayerInput{FirstName: "Ana", LastName: "Aguirre", Teams: []string{"ascenso"}},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestRosterService_UpdatePlayer(t *testing.T) {
	t.Parallel()

	newService := func() (*RosterService, *playerRepoStub, *rosterListenerStub) {
		players := newPlayerRepoStub(rosterPlayer("u-1", "Ana", "Aguirre", attendance.TeamAscenso))
		listener := &rosterListenerStub{}
		svc := NewRosterService(players, nil, time.Minute, time.Now)
		svc.SetChangeListener(listener)
		return svc, players, listener
	}

	t.Run("players edit their own names but not teams", func(t *testing.T) {
		t.Parallel()
		svc, players, _ := newService()
		player, err := svc.UpdatePlayer(context.Background(), UpdatePlayerParams{
			Principal: Principal{UserID: "u-1"},
			PlayerID:  "u-1",
			Input:     PlayerInput{FirstName: "Anita", LastName: "Aguirre", Teams: []string{"escuela"}},
		})
		if err != nil {
			t.Fatalf("UpdatePlayer returned error: %v", err)
		}
		if player.FirstName != "Anita" {
			t.Fatalf("expected name change, got %q", player.FirstName)
		}
		stored := players.players["u-1"]
		if len(stored.Teams) != 1 || stored.Teams[0] != attendance.TeamAscenso {
			t.Fatalf("expected teams unchanged, got %v", stored.Teams)
		}
	})

	t.Run("other players are refused", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService()
		_, err := svc.UpdatePlayer(context.Background(), UpdatePlayerParams{
			Principal: Principal{UserID: "u-2"},
			PlayerID:  "u-1",
			Input:     PlayerInput{FirstName: "X", LastName: "Y", Teams: []string{"ascenso"}},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("administrators move players between teams", func(t *testing.T) {
		t.Parallel()
		svc, players, listener := newService()
		_, err := svc.UpdatePlayer(context.Background(), UpdatePlayerParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			PlayerID:  "u-1",
			Input:     PlayerInput{FirstName: "Ana", LastName: "Aguirre", Teams: []string{"escuela"}},
		})
		if err != nil {
			t.Fatalf("UpdatePlayer returned error: %v", err)
		}
		if got := players.players["u-1"].Teams; len(got) != 1 || got[0] != attendance.TeamEscuela {
			t.Fatalf("expected escuela, got %v", got)
		}
		if len(listener.teams) != 1 || len(listener.teams[0]) != 2 {
			t.Fatalf("expected old and new teams to be notified, got %v", listener.teams)
		}
	})

	t.Run("missing player", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService()
		_, err := svc.UpdatePlayer(context.Background(), UpdatePlayerParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			PlayerID:  "nobody",
			Input:     PlayerInput{FirstName: "X", LastName: "Y", Teams: []string{"ascenso"}},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRosterService_DeletePlayer(t *testing.T) {
	t.Parallel()

	players := newPlayerRepoStub(rosterPlayer("u-1", "Ana", "Aguirre", attendance.TeamAscenso))
	listener := &rosterListenerStub{}
	svc := NewRosterService(players, nil, time.Minute, time.Now)
	svc.SetChangeListener(listener)

	if err := svc.DeletePlayer(context.Background(), Principal{UserID: "u-1"}, "u-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeletePlayer(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "u-1"); err != nil {
		t.Fatalf("DeletePlayer returned error: %v", err)
	}
	if len(listener.teams) != 1 || listener.teams[0][0] != attendance.TeamAscenso {
		t.Fatalf("expected ascenso to be notified, got %v", listener.teams)
	}
	if err := svc.DeletePlayer(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRosterService_TeamRosterUsesCache(t *testing.T) {
	t.Parallel()

	players := newPlayerRepoStub(rosterPlayer("u-1", "Ana", "Aguirre", attendance.TeamAscenso))
	svc := NewRosterService(players, nil, time.Minute, time.Now)

	for i := 0; i < 3; i++ {
		roster, err := svc.TeamRoster(context.Background(), attendance.TeamAscenso)
		if err != nil {
			t.Fatalf("TeamRoster returned error: %v", err)
		}
		if len(roster) != 1 {
			t.Fatalf("expected one player, got %d", len(roster))
		}
	}
	if players.listCalls != 1 {
		t.Fatalf("expected a single store read, got %d", players.listCalls)
	}

	players.err = errStoreDown
	svc.cache.Invalidate()
	if _, err := svc.TeamRoster(context.Background(), attendance.TeamAscenso); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}
