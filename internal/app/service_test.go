package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
	"github.com/valyrian-games/leaderboard/internal/ingest"

	. "github.com/smartystreets/goconvey/convey"
)

func newService(t *testing.T) (*app.Service, *repository.FileStore) {
	t.Helper()
	dir := t.TempDir()
	store, err := repository.NewFileStore(filepath.Join(dir, "games"), filepath.Join(dir, "leaderboard.json"))
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}
	return app.NewService(store), store
}

func gameRecord(id, date string, participants []string, ranks []int) model.GameRecord {
	return model.GameRecord{
		GameID:       id,
		Date:         date,
		GameType:     "test",
		Participants: participants,
		Ranks:        ranks,
	}
}

func TestSubmitGame(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty service", t, func() {
		svc, _ := newService(t)

		Convey("When a game is submitted without an id or date", func() {
			submitted, err := svc.SubmitGame(ctx, model.GameRecord{
				GameType:     "test",
				Participants: []string{"alpha", "beta"},
				Ranks:        []int{0, 1},
			})
			So(err, ShouldBeNil)

			Convey("Then both are filled in", func() {
				So(submitted.GameID, ShouldNotBeEmpty)
				So(submitted.Date, ShouldNotBeEmpty)
			})

			Convey("Then the leaderboard reflects the outcome", func() {
				snapshot, lbErr := svc.Leaderboard(ctx, 0)
				So(lbErr, ShouldBeNil)
				So(snapshot.Models, ShouldHaveLength, 2)
				So(snapshot.Models[0].Name, ShouldEqual, "alpha")
				So(snapshot.Models[0].Wins, ShouldEqual, 1)
				So(snapshot.Models[1].Losses, ShouldEqual, 1)
			})
		})

		Convey("When an invalid record is submitted", func() {
			_, err := svc.SubmitGame(ctx, model.GameRecord{
				GameType:     "test",
				Participants: []string{"alpha", "beta"},
				Ranks:        []int{0}, // length mismatch
			})

			Convey("Then nothing is stored", func() {
				So(err, ShouldWrap, model.ErrMalformedGameRecord)
				games, gamesErr := svc.Games(ctx, 10, 0)
				So(gamesErr, ShouldBeNil)
				So(games, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a submission backdated before the folded history", t, func() {
		svc, _ := newService(t)
		_, err := svc.SubmitGame(ctx, gameRecord("recent", "2025-03-01T00:00:00Z",
			[]string{"gamma", "delta"}, []int{0, 1}))
		So(err, ShouldBeNil)
		_, err = svc.SubmitGame(ctx, gameRecord("backdated", "2025-01-01T00:00:00Z",
			[]string{"gamma", "delta"}, []int{1, 0}))
		So(err, ShouldBeNil)

		Convey("Then the stored snapshot equals a full recomputation", func() {
			stored, err := svc.Leaderboard(ctx, 0)
			So(err, ShouldBeNil)

			recomputed, report, err := svc.Recompute(ctx)
			So(err, ShouldBeNil)
			So(report.Folded, ShouldEqual, 2)
			So(stored.Models, ShouldResemble, recomputed.Models)
		})
	})

	Convey("Given a submission dated exactly like the latest folded game", t, func() {
		svc, _ := newService(t)
		_, err := svc.SubmitGame(ctx, gameRecord("zulu", "2025-03-01T00:00:00Z",
			[]string{"gamma", "delta"}, []int{0, 1}))
		So(err, ShouldBeNil)
		// Sorts before "zulu" in the stable secondary order despite the
		// equal date, so the incremental fold would be wrong here too.
		_, err = svc.SubmitGame(ctx, gameRecord("alpha", "2025-03-01T00:00:00Z",
			[]string{"gamma", "delta"}, []int{1, 0}))
		So(err, ShouldBeNil)

		Convey("Then the stored snapshot equals a full recomputation", func() {
			stored, err := svc.Leaderboard(ctx, 0)
			So(err, ShouldBeNil)

			recomputed, _, err := svc.Recompute(ctx)
			So(err, ShouldBeNil)
			So(stored.Models, ShouldResemble, recomputed.Models)
		})
	})

	Convey("Given a sequence of submissions", t, func() {
		svc, _ := newService(t)

		for i := 0; i < 3; i++ {
			_, err := svc.SubmitGame(ctx, gameRecord(
				fmt.Sprintf("game-%d", i),
				fmt.Sprintf("2025-03-0%dT12:00:00Z", i+1),
				[]string{"alpha", "beta"}, []int{0, 1}))
			So(err, ShouldBeNil)
		}

		Convey("Then the incremental folds match a full recomputation", func() {
			incremental, err := svc.Leaderboard(ctx, 0)
			So(err, ShouldBeNil)

			recomputed, report, err := svc.Recompute(ctx)
			So(err, ShouldBeNil)
			So(report.Folded, ShouldEqual, 3)
			So(report.Skipped, ShouldEqual, 0)
			So(recomputed.Models, ShouldResemble, incremental.Models)
		})
	})
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store seeded out of chronological order", t, func() {
		svc, store := newService(t)
		So(store.AppendGameRecord(ctx, gameRecord("later", "2025-05-02T00:00:00Z",
			[]string{"alpha", "beta"}, []int{1, 0})), ShouldBeNil)
		So(store.AppendGameRecord(ctx, gameRecord("earlier", "2025-05-01T00:00:00Z",
			[]string{"alpha", "beta"}, []int{0, 1})), ShouldBeNil)

		Convey("When the leaderboard is recomputed", func() {
			first, _, err := svc.Recompute(ctx)
			So(err, ShouldBeNil)

			Convey("Then replaying again yields the identical ordering", func() {
				second, _, err := svc.Recompute(ctx)
				So(err, ShouldBeNil)
				So(second.Models, ShouldResemble, first.Models)
			})

			Convey("Then the persisted snapshot matches the returned one", func() {
				loaded, loadErr := store.LoadSnapshot(ctx)
				So(loadErr, ShouldBeNil)
				So(loaded, ShouldNotBeNil)
				So(loaded.Models, ShouldResemble, first.Models)
			})
		})
	})
}

func TestImportTournament(t *testing.T) {
	ctx := context.Background()

	tournament := &ingest.TournamentResult{
		TournamentInfo: ingest.TournamentInfo{Timestamp: "2025-06-01T10:00:00Z", NumChallenges: 1},
		Contenders:     []string{"alpha", "beta"},
		FinalScores:    map[string]float64{"alpha": 3, "beta": 1},
	}

	Convey("Given a tournament result file", t, func() {
		svc, _ := newService(t)
		data, err := json.Marshal(tournament)
		So(err, ShouldBeNil)
		path := filepath.Join(t.TempDir(), "tournament_results_001.json")
		So(os.WriteFile(path, data, 0o644), ShouldBeNil)

		Convey("When it is imported", func() {
			result, err := svc.ImportTournament(ctx, path, ingest.Options{})
			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, ingest.StatusImported)

			Convey("Then the leaderboard is recomputed from the new history", func() {
				snapshot, lbErr := svc.Leaderboard(ctx, 0)
				So(lbErr, ShouldBeNil)
				So(snapshot.Models, ShouldHaveLength, 2)
				So(snapshot.Models[0].Name, ShouldEqual, "alpha")
			})

			Convey("And importing it again changes nothing", func() {
				before, lbErr := svc.Leaderboard(ctx, 0)
				So(lbErr, ShouldBeNil)

				again, againErr := svc.ImportTournament(ctx, path, ingest.Options{})
				So(againErr, ShouldBeNil)
				So(again.Status, ShouldEqual, ingest.StatusDuplicate)

				after, lbErr := svc.Leaderboard(ctx, 0)
				So(lbErr, ShouldBeNil)
				So(after.Models, ShouldResemble, before.Models)
			})
		})
	})
}

func TestReadPaths(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with no snapshot yet", t, func() {
		svc, _ := newService(t)

		_, err := svc.Leaderboard(ctx, 0)
		So(err, ShouldWrap, app.ErrNoSnapshot)
	})

	Convey("Given a populated history", t, func() {
		svc, store := newService(t)
		for i := 1; i <= 5; i++ {
			So(store.AppendGameRecord(ctx, gameRecord(
				fmt.Sprintf("game-%d", i),
				fmt.Sprintf("2025-07-0%dT00:00:00Z", i),
				[]string{"alpha", "beta"}, []int{0, 1})), ShouldBeNil)
		}

		Convey("Then Games pages newest first", func() {
			page, err := svc.Games(ctx, 2, 0)
			So(err, ShouldBeNil)
			So(page, ShouldHaveLength, 2)
			So(page[0].GameID, ShouldEqual, "game-5")
			So(page[1].GameID, ShouldEqual, "game-4")

			next, err := svc.Games(ctx, 2, 2)
			So(err, ShouldBeNil)
			So(next[0].GameID, ShouldEqual, "game-3")
		})

		Convey("Then an offset past the end returns an empty page", func() {
			page, err := svc.Games(ctx, 10, 100)
			So(err, ShouldBeNil)
			So(page, ShouldBeEmpty)
		})

		Convey("Then Game finds a stored record", func() {
			rec, err := svc.Game(ctx, "game-3")
			So(err, ShouldBeNil)
			So(rec.Date, ShouldEqual, "2025-07-03T00:00:00Z")
		})

		Convey("Then an unknown id reports not found", func() {
			_, err := svc.Game(ctx, "missing")
			So(err, ShouldWrap, app.ErrGameNotFound)
		})
	})

	Convey("Given more models than the leaderboard limit", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFileStore(filepath.Join(dir, "games"), filepath.Join(dir, "leaderboard.json"))
		So(err, ShouldBeNil)
		svc := app.NewService(store, app.WithLeaderboardLimit(2))

		participants := []string{"alpha", "beta", "gamma", "delta"}
		So(store.AppendGameRecord(ctx, gameRecord("big", "2025-07-01T00:00:00Z",
			participants, []int{0, 1, 2, 3})), ShouldBeNil)
		_, _, err = svc.Recompute(ctx)
		So(err, ShouldBeNil)

		Convey("Then reads are clamped to the configured maximum", func() {
			snapshot, lbErr := svc.Leaderboard(ctx, 50)
			So(lbErr, ShouldBeNil)
			So(snapshot.Models, ShouldHaveLength, 2)
			So(snapshot.Models[0].Name, ShouldEqual, "alpha")
		})
	})
}
