package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-portal/internal/attendance"
	"github.com/example/club-portal/internal/live"
)

var clubZone = time.FixedZone("CLT", -4*60*60)

func clubTime(hour, minute, second int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, second, 0, clubZone)
}

func ascensoTraining(id string) TrainingSession {
	return TrainingSession{Session: attendance.Session{
		ID:         id,
		Title:      "Entrenamiento",
		Date:       attendance.DatePtr(2025, time.June, 1),
		Start:      attendance.TimePtr(16, 0, 0),
		End:        attendance.TimePtr(18, 0, 0),
		Team:       attendance.TeamAscenso,
		Attendance: attendance.Map{},
	}}
}

func ascensoRoster() []attendance.Player {
	return []attendance.Player{
		{ID: "A", FirstName: "Ana", LastName: "Aguirre", Teams: []attendance.Team{attendance.TeamAscenso}},
		{ID: "B", FirstName: "Bea", LastName: "Bravo", Teams: []attendance.Team{attendance.TeamAscenso}},
		{ID: "C", FirstName: "Carla", LastName: "Castro", Teams: []attendance.Team{attendance.TeamAscenso}},
	}
}

func validTrainingInput() TrainingInput {
	return TrainingInput{
		Title:     "Táctica",
		Date:      "2025-06-08",
		StartTime: "16:00",
		EndTime:   "18:00",
		Venue:     "Gimnasio",
		Team:      "ascenso",
	}
}

func TestTrainingService_CreateTraining(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: "admin", IsAdmin: true}

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		repo := newTrainingRepoStub()
		svc := NewTrainingService(repo, repo, &rosterStub{}, nil, &hubStub{}, sequentialIDs("training"), fixedClock(clubTime(9, 0, 0)))

		_, err := svc.CreateTraining(context.Background(), CreateTrainingParams{
			Principal: Principal{UserID: "A"},
			Input:     validTrainingInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if len(repo.trainings) != 0 {
			t.Fatalf("expected nothing persisted")
		}
	})

	t.Run("validates input fields", func(t *testing.T) {
		t.Parallel()
		repo := newTrainingRepoStub()
		svc := NewTrainingService(repo, repo, &rosterStub{}, nil, &hubStub{}, sequentialIDs("training"), fixedClock(clubTime(9, 0, 0)))

		cases := []struct {
			name    string
			mutate  func(*TrainingInput)
			field   string
			message string
		}{
			{"missing title", func(in *TrainingInput) { in.Title = "  " }, "title", "title is required"},
			{"missing team", func(in *TrainingInput) { in.Team = "" }, "team", "team is required"},
			{"unknown team", func(in *TrainingInput) { in.Team = "primera" }, "team", "team is invalid"},
			{"bad date", func(in *TrainingInput) { in.Date = "2025-02-30" }, "date", "date is invalid"},
			{"bad start", func(in *TrainingInput) { in.StartTime = "25:00" }, "start_time", "start_time is invalid"},
			{"end before start", func(in *TrainingInput) { in.EndTime = "15:00" }, "end_time", "end_time is invalid"},
			{"end equals start", func(in *TrainingInput) { in.EndTime = "16:00" }, "end_time", "end_time is invalid"},
		}

		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				input := validTrainingInput()
				tc.mutate(&input)
				_, err := svc.CreateTraining(context.Background(), CreateTrainingParams{Principal: admin, Input: input})

				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if got := vErr.FieldErrors[tc.field]; got != tc.message {
					t.Fatalf("expected %q for %s, got %q (%v)", tc.message, tc.field, got, vErr.FieldErrors)
				}
			})
		}
	})

	t.Run("persists with empty attendance and publishes", func(t *testing.T) {
		t.Parallel()
		repo := newTrainingRepoStub()
		hub := &hubStub{}
		svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, hub, sequentialIDs("training"), fixedClock(clubTime(9, 0, 0)))

		input := validTrainingInput()
		input.Team = "jugadoras-ascenso"
		board, err := svc.CreateTraining(context.Background(), CreateTrainingParams{Principal: admin, Input: input})
		if err != nil {
			t.Fatalf("CreateTraining returned error: %v", err)
		}
		if board.Training.ID != "training-1" {
			t.Fatalf("expected generated id, got %q", board.Training.ID)
		}
		if board.Training.Team != attendance.TeamAscenso {
			t.Fatalf("expected legacy team to be normalized, got %q", board.Training.Team)
		}
		if board.Training.Attendance == nil || len(board.Training.Attendance) != 0 {
			t.Fatalf("expected empty attendance map, got %v", board.Training.Attendance)
		}
		if !board.CanEdit {
			t.Fatalf("expected administrators to be able to edit")
		}
		if got := len(board.Groups.NoResponse); got != 3 {
			t.Fatalf("expected the whole roster without response, got %d", got)
		}

		published := hub.Published()
		if len(published) != 1 || published[0].Team != attendance.TeamAscenso || len(published[0].Trainings) != 1 {
			t.Fatalf("expected one ascenso snapshot with the new training, got %+v", published)
		}
	})
}

func TestTrainingService_UpdateTraining_PreservesAttendance(t *testing.T) {
	t.Parallel()

	training := ascensoTraining("training-1")
	training.Attendance["A"] = []byte(`"signed-up"`)
	repo := newTrainingRepoStub(training)
	hub := &hubStub{}
	svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(clubTime(9, 0, 0)))

	input := validTrainingInput()
	input.Title = "Físico"
	input.Team = "escuela"
	board, err := svc.UpdateTraining(context.Background(), UpdateTrainingParams{
		Principal:  Principal{UserID: "admin", IsAdmin: true},
		TrainingID: "training-1",
		Input:      input,
	})
	if err != nil {
		t.Fatalf("UpdateTraining returned error: %v", err)
	}
	if board.Training.Title != "Físico" {
		t.Fatalf("expected title to change, got %q", board.Training.Title)
	}
	if string(board.Training.Attendance["A"]) != `"signed-up"` {
		t.Fatalf("expected attendance to be preserved, got %v", board.Training.Attendance)
	}

	teams := map[attendance.Team]bool{}
	for _, snapshot := range hub.Published() {
		teams[snapshot.Team] = true
	}
	if !teams[attendance.TeamAscenso] || !teams[attendance.TeamEscuela] {
		t.Fatalf("expected both the old and the new team to be republished, got %v", teams)
	}

	_, err = svc.UpdateTraining(context.Background(), UpdateTrainingParams{
		Principal:  Principal{UserID: "admin", IsAdmin: true},
		TrainingID: "missing",
		Input:      validTrainingInput(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrainingService_DeleteTraining(t *testing.T) {
	t.Parallel()

	repo := newTrainingRepoStub(ascensoTraining("training-1"))
	hub := &hubStub{}
	svc := NewTrainingService(repo, repo, &rosterStub{}, nil, hub, nil, fixedClock(clubTime(9, 0, 0)))

	if err := svc.DeleteTraining(context.Background(), Principal{UserID: "A"}, "training-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteTraining(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "training-1"); err != nil {
		t.Fatalf("DeleteTraining returned error: %v", err)
	}
	if _, ok := repo.trainings["training-1"]; ok {
		t.Fatalf("expected training to be removed")
	}
	if published := hub.Published(); len(published) != 1 || len(published[0].Trainings) != 0 {
		t.Fatalf("expected an empty ascenso snapshot, got %+v", published)
	}
	if err := svc.DeleteTraining(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "training-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrainingService_ListTrainings(t *testing.T) {
	t.Parallel()

	older := ascensoTraining("older")
	older.Date = attendance.DatePtr(2025, time.May, 1)
	undated := ascensoTraining("undated")
	undated.Date = nil
	newer := ascensoTraining("newer")
	newer.Date = attendance.DatePtr(2025, time.July, 1)
	other := ascensoTraining("other")
	other.Team = attendance.TeamEscuela

	repo := newTrainingRepoStub(older, undated, newer, other)
	svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, nil, nil, fixedClock(clubTime(9, 0, 0)))

	boards, err := svc.ListTrainings(context.Background(), Principal{UserID: "A"}, "ascenso")
	if err != nil {
		t.Fatalf("ListTrainings returned error: %v", err)
	}
	var ids []string
	for _, board := range boards {
		ids = append(ids, board.Training.ID)
	}
	want := []string{"newer", "older", "undated"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
	if !boards[2].Expired {
		t.Fatalf("expected undated training to be closed")
	}
	if boards[0].Expired {
		t.Fatalf("expected future training to be open")
	}

	if _, err := svc.ListTrainings(context.Background(), Principal{UserID: "A"}, "primera"); err == nil {
		t.Fatalf("expected validation error for unknown team")
	}
	if _, err := svc.ListTrainings(context.Background(), Principal{}, "ascenso"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without principal, got %v", err)
	}
}

func TestTrainingService_ChangeAttendance_Gate(t *testing.T) {
	t.Parallel()

	member := Principal{UserID: "A"}

	cases := []struct {
		name     string
		training func() TrainingSession
		now      time.Time
		params   ChangeAttendanceParams
		wantErr  error
	}{
		{
			name:     "expired training",
			training: func() TrainingSession { return ascensoTraining("t") },
			now:      clubTime(18, 0, 1),
			params:   ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: attendance.ActionSignUp},
			wantErr:  ErrAttendanceClosed,
		},
		{
			name: "training without end time",
			training: func() TrainingSession {
				training := ascensoTraining("t")
				training.End = nil
				return training
			},
			now:     clubTime(9, 0, 0),
			params:  ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: attendance.ActionSignUp},
			wantErr: ErrAttendanceClosed,
		},
		{
			name: "player outside the team",
			training: func() TrainingSession {
				training := ascensoTraining("t")
				training.Team = attendance.TeamEscuela
				return training
			},
			now:     clubTime(9, 0, 0),
			params:  ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: attendance.ActionSignUp},
			wantErr: ErrUnauthorized,
		},
		{
			name: "withdraw twice",
			training: func() TrainingSession {
				training := ascensoTraining("t")
				training.Attendance["A"] = []byte(`{"status":"withdrawn","reason":"viaje"}`)
				return training
			},
			now:     clubTime(9, 0, 0),
			params:  ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: attendance.ActionWithdraw, Reason: "lesión"},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "sign up twice",
			training: func() TrainingSession {
				training := ascensoTraining("t")
				training.Attendance["A"] = []byte(`"signed-up"`)
				return training
			},
			now:     clubTime(9, 0, 0),
			params:  ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: attendance.ActionSignUp},
			wantErr: ErrInvalidTransition,
		},
		{
			name:     "missing training",
			training: func() TrainingSession { return ascensoTraining("t") },
			now:      clubTime(9, 0, 0),
			params:   ChangeAttendanceParams{Principal: member, TrainingID: "missing", Action: attendance.ActionSignUp},
			wantErr:  ErrNotFound,
		},
		{
			name:     "anonymous caller",
			training: func() TrainingSession { return ascensoTraining("t") },
			now:      clubTime(9, 0, 0),
			params:   ChangeAttendanceParams{TrainingID: "t", Action: attendance.ActionSignUp},
			wantErr:  ErrUnauthorized,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := newTrainingRepoStub(tc.training())
			writer := &recordingWriter{next: repo}
			hub := &hubStub{}
			svc := NewTrainingService(repo, writer, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(tc.now))

			_, err := svc.ChangeAttendance(context.Background(), tc.params)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if calls := writer.Calls(); len(calls) != 0 {
				t.Fatalf("expected no write, got %+v", calls)
			}
			if published := hub.Published(); len(published) != 0 {
				t.Fatalf("expected no snapshot, got %d", len(published))
			}
		})
	}

	t.Run("rejects unknown actions", func(t *testing.T) {
		t.Parallel()
		repo := newTrainingRepoStub(ascensoTraining("t"))
		writer := &recordingWriter{next: repo}
		svc := NewTrainingService(repo, writer, &rosterStub{players: ascensoRoster()}, nil, nil, nil, fixedClock(clubTime(9, 0, 0)))

		_, err := svc.ChangeAttendance(context.Background(), ChangeAttendanceParams{Principal: member, TrainingID: "t", Action: "toggle"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["action"] == "" {
			t.Fatalf("expected action validation error, got %v", err)
		}
		if len(writer.Calls()) != 0 {
			t.Fatalf("expected no write")
		}
	})
}

func TestTrainingService_ChangeAttendance_WritesOnlyOwnKeyOnce(t *testing.T) {
	t.Parallel()

	training := ascensoTraining("t")
	training.Attendance["B"] = []byte(`{"estado":"baja","motivo":"trabajo"}`)
	repo := newTrainingRepoStub(training)
	writer := &recordingWriter{next: repo}
	hub := &hubStub{}
	svc := NewTrainingService(repo, writer, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(clubTime(18, 0, 0)))

	board, err := svc.ChangeAttendance(context.Background(), ChangeAttendanceParams{
		Principal:  Principal{UserID: "A"},
		TrainingID: "t",
		Action:     attendance.ActionSignUp,
	})
	if err != nil {
		t.Fatalf("ChangeAttendance at the closing instant returned error: %v", err)
	}

	calls := writer.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(calls))
	}
	if calls[0].UserID != "A" || calls[0].TrainingID != "t" || calls[0].Value.Withdrawn() {
		t.Fatalf("unexpected write %+v", calls[0])
	}
	if got := string(repo.trainings["t"].Attendance["B"]); got != `{"estado":"baja","motivo":"trabajo"}` {
		t.Fatalf("expected other entries untouched, got %s", got)
	}
	if board.MyStatus != attendance.SignedUp() || board.NextAction != attendance.ActionWithdraw {
		t.Fatalf("unexpected board status %+v next %s", board.MyStatus, board.NextAction)
	}
	if len(hub.Published()) != 1 {
		t.Fatalf("expected one published snapshot")
	}
}

func TestTrainingService_ChangeAttendance_KeepsReasonVerbatim(t *testing.T) {
	t.Parallel()

	repo := newTrainingRepoStub(ascensoTraining("t"))
	svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, &hubStub{}, nil, fixedClock(clubTime(9, 0, 0)))

	reason := "  viaje al sur \n"
	board, err := svc.ChangeAttendance(context.Background(), ChangeAttendanceParams{
		Principal:  Principal{UserID: "A"},
		TrainingID: "t",
		Action:     attendance.ActionWithdraw,
		Reason:     reason,
	})
	if err != nil {
		t.Fatalf("ChangeAttendance returned error: %v", err)
	}
	if board.MyStatus != attendance.Withdrawn(reason) {
		t.Fatalf("expected reason kept verbatim, got %+v", board.MyStatus)
	}
	if status := attendance.Resolve(repo.trainings["t"].Session, "A"); status != attendance.Withdrawn(reason) {
		t.Fatalf("expected stored reason kept verbatim, got %+v", status)
	}
}

func TestTrainingService_ChangeAttendance_WriteFailure(t *testing.T) {
	t.Parallel()

	repo := newTrainingRepoStub(ascensoTraining("t"))
	writer := &recordingWriter{next: repo, err: errStoreDown}
	hub := &hubStub{}
	svc := NewTrainingService(repo, writer, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(clubTime(9, 0, 0)))

	_, err := svc.ChangeAttendance(context.Background(), ChangeAttendanceParams{
		Principal:  Principal{UserID: "A"},
		TrainingID: "t",
		Action:     attendance.ActionSignUp,
	})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected write error to be returned, got %v", err)
	}
	if len(writer.Calls()) != 1 {
		t.Fatalf("expected a single attempt without retries, got %d", len(writer.Calls()))
	}
	if len(hub.Published()) != 0 {
		t.Fatalf("expected nothing published after a failed write")
	}
	if status := attendance.Resolve(repo.trainings["t"].Session, "A"); status != attendance.NoResponse() {
		t.Fatalf("expected stored status unchanged, got %v", status)
	}
}

func TestTrainingService_AscensoScenario(t *testing.T) {
	t.Parallel()

	players := newPlayerRepoStub()
	for _, p := range ascensoRoster() {
		players.players[p.ID] = Player{Player: p}
	}
	now := clubTime(17, 0, 0)
	clock := func() time.Time { return now }

	roster := NewRosterService(players, nil, time.Minute, clock)
	repo := newTrainingRepoStub(ascensoTraining("t"))
	svc := NewTrainingService(repo, repo, roster, players, live.NewHub[TeamSnapshot](), nil, clock)

	ctx := context.Background()
	steps := []struct {
		user   string
		action attendance.Action
		reason string
	}{
		{"A", attendance.ActionSignUp, ""},
		{"B", attendance.ActionWithdraw, "viaje"},
	}
	for _, step := range steps {
		if _, err := svc.ChangeAttendance(ctx, ChangeAttendanceParams{
			Principal:  Principal{UserID: step.user},
			TrainingID: "t",
			Action:     step.action,
			Reason:     step.reason,
		}); err != nil {
			t.Fatalf("%s %s returned error: %v", step.user, step.action, err)
		}
	}

	board, err := svc.GetTraining(ctx, Principal{UserID: "B"}, "t")
	if err != nil {
		t.Fatalf("GetTraining returned error: %v", err)
	}
	assertPlayerIDs(t, "signed up", board.Groups.SignedUp, "A")
	assertPlayerIDs(t, "withdrawn", board.Groups.Withdrawn, "B")
	assertPlayerIDs(t, "no response", board.Groups.NoResponse, "C")
	if board.MyStatus != attendance.Withdrawn("viaje") {
		t.Fatalf("expected B to be withdrawn for viaje, got %+v", board.MyStatus)
	}
	if board.NextAction != attendance.ActionSignUp {
		t.Fatalf("expected B to be offered sign up, got %s", board.NextAction)
	}

	summary, err := svc.SummarizePlayer(ctx, Principal{UserID: "C"}, "A")
	if err != nil {
		t.Fatalf("SummarizePlayer returned error: %v", err)
	}
	if summary.Summary != (attendance.Summary{Sessions: 1, SignedUp: 1, Percentage: 100}) {
		t.Fatalf("unexpected summary %+v", summary.Summary)
	}

	now = clubTime(18, 0, 1)
	_, err = svc.ChangeAttendance(ctx, ChangeAttendanceParams{
		Principal:  Principal{UserID: "A"},
		TrainingID: "t",
		Action:     attendance.ActionWithdraw,
		Reason:     "tarde",
	})
	if !errors.Is(err, ErrAttendanceClosed) {
		t.Fatalf("expected ErrAttendanceClosed after 18:00, got %v", err)
	}
	if status := attendance.Resolve(repo.trainings["t"].Session, "A"); status != attendance.SignedUp() {
		t.Fatalf("expected A to stay signed up, got %v", status)
	}
}

func TestTrainingService_WatchTeam(t *testing.T) {
	t.Parallel()

	repo := newTrainingRepoStub(ascensoTraining("t"))
	hub := live.NewHub[TeamSnapshot]()
	svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(clubTime(9, 0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.WatchTeam(ctx, Principal{UserID: "C"}, "ascenso")
	if err != nil {
		t.Fatalf("WatchTeam returned error: %v", err)
	}

	initial := receiveBoards(t, updates)
	if len(initial.Boards) != 1 || len(initial.Boards[0].Groups.SignedUp) != 0 {
		t.Fatalf("unexpected initial boards %+v", initial)
	}

	if _, err := svc.ChangeAttendance(ctx, ChangeAttendanceParams{
		Principal:  Principal{UserID: "A"},
		TrainingID: "t",
		Action:     attendance.ActionSignUp,
	}); err != nil {
		t.Fatalf("ChangeAttendance returned error: %v", err)
	}

	next := receiveBoards(t, updates)
	if next.Sequence <= initial.Sequence {
		t.Fatalf("expected increasing sequence, got %d after %d", next.Sequence, initial.Sequence)
	}
	assertPlayerIDs(t, "signed up", next.Boards[0].Groups.SignedUp, "A")
	if next.Boards[0].MyStatus != attendance.NoResponse() {
		t.Fatalf("expected boards rendered for the watcher, got %+v", next.Boards[0].MyStatus)
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				if n := hub.Subscribers(teamTopic(attendance.TeamAscenso)); n != 0 {
					t.Fatalf("expected subscription to be released, got %d", n)
				}
				return
			}
		case <-deadline:
			t.Fatalf("expected channel to close after cancel")
		}
	}
}

func TestTrainingService_RosterChangedRepublishes(t *testing.T) {
	t.Parallel()

	repo := newTrainingRepoStub(ascensoTraining("t"))
	hub := &hubStub{}
	svc := NewTrainingService(repo, repo, &rosterStub{players: ascensoRoster()}, nil, hub, nil, fixedClock(clubTime(9, 0, 0)))

	svc.RosterChanged(context.Background(), []attendance.Team{attendance.TeamAscenso, attendance.TeamEscuela})

	published := hub.Published()
	if len(published) != 2 {
		t.Fatalf("expected two snapshots, got %d", len(published))
	}
	if published[0].Sequence >= published[1].Sequence {
		t.Fatalf("expected increasing sequences, got %d then %d", published[0].Sequence, published[1].Sequence)
	}
	if len(published[0].Roster) != 3 {
		t.Fatalf("expected ascenso roster in snapshot, got %d players", len(published[0].Roster))
	}
}

func receiveBoards(t *testing.T, updates <-chan TeamBoards) TeamBoards {
	t.Helper()
	select {
	case boards, ok := <-updates:
		if !ok {
			t.Fatalf("updates channel closed unexpectedly")
		}
		return boards
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for boards")
	}
	return TeamBoards{}
}

func assertPlayerIDs(t *testing.T, label string, players []attendance.Player, ids ...string) {
	t.Helper()
	if len(players) != len(ids) {
		t.Fatalf("%s: expected %v, got %d players", label, ids, len(players))
	}
	for i, id := range ids {
		if players[i].ID != id {
			t.Fatalf("%s: expected %v at %d, got %s", label, ids, i, players[i].ID)
		}
	}
}
