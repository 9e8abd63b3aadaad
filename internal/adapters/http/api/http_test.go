package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/valyrian-games/leaderboard/internal/adapters/http/api"
	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementation for testing.
type mockService struct {
	snapshot    model.Snapshot
	snapshotErr error
	games       []model.GameRecord
	submitted   []model.GameRecord
	report      board.Report
	recomputes  int
}

func (m *mockService) Leaderboard(_ context.Context, limit int) (model.Snapshot, error) {
	if m.snapshotErr != nil {
		return model.Snapshot{}, m.snapshotErr
	}
	snapshot := m.snapshot
	if len(snapshot.Models) > limit {
		snapshot.Models = snapshot.Models[:limit]
	}
	return snapshot, nil
}

func (m *mockService) Game(_ context.Context, gameID string) (model.GameRecord, error) {
	for _, g := range m.games {
		if g.GameID == gameID {
			return g, nil
		}
	}
	return model.GameRecord{}, fmt.Errorf("%w: %s", app.ErrGameNotFound, gameID)
}

func (m *mockService) Games(_ context.Context, limit, offset int) ([]model.GameRecord, error) {
	if offset >= len(m.games) {
		return []model.GameRecord{}, nil
	}
	end := offset + limit
	if end > len(m.games) {
		end = len(m.games)
	}
	return m.games[offset:end], nil
}

func (m *mockService) SubmitGame(_ context.Context, rec model.GameRecord) (model.GameRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.GameRecord{}, err
	}
	if rec.GameID == "" {
		rec.GameID = "generated-id"
	}
	for _, prev := range m.submitted {
		if prev.GameID == rec.GameID {
			return model.GameRecord{}, fmt.Errorf("append game record: %w", repository.ErrDuplicateGame)
		}
	}
	m.submitted = append(m.submitted, rec)
	return rec, nil
}

func (m *mockService) Recompute(_ context.Context) (model.Snapshot, board.Report, error) {
	m.recomputes++
	return m.snapshot, m.report, nil
}

func newTestMux(svc *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, 100, 50).Register(mux)
	return mux
}

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		LastUpdated: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		Models: []model.ModelRating{
			{Name: "alpha", Mu: 30, Sigma: 5, ConservativeRating: 15, GamesPlayed: 3, Wins: 3},
			{Name: "beta", Mu: 22, Sigma: 6, ConservativeRating: 4, GamesPlayed: 3, Losses: 3},
		},
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a server with a computed leaderboard", t, func() {
		svc := &mockService{snapshot: sampleSnapshot()}
		mux := newTestMux(svc)

		Convey("When GET /leaderboard is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got model.Snapshot
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Models, ShouldHaveLength, 2)
			So(got.Models[0].Name, ShouldEqual, "alpha")
		})

		Convey("When a limit truncates the board", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got model.Snapshot
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Models, ShouldHaveLength, 1)
		})

		Convey("When the limit is not a number", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=abc", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the maximum", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=9999", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is not GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/leaderboard", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a server before the first recomputation", t, func() {
		svc := &mockService{snapshotErr: app.ErrNoSnapshot}
		mux := newTestMux(svc)

		Convey("Then the leaderboard is served empty, not as an error", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got model.Snapshot
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Models, ShouldBeEmpty)
		})
	})
}

func TestGamesEndpoints(t *testing.T) {
	history := []model.GameRecord{
		{GameID: "g-3", Date: "2025-07-03T00:00:00Z", Participants: []string{"alpha", "beta"}, Ranks: []int{0, 1}},
		{GameID: "g-2", Date: "2025-07-02T00:00:00Z", Participants: []string{"alpha", "beta"}, Ranks: []int{1, 0}},
		{GameID: "g-1", Date: "2025-07-01T00:00:00Z", Participants: []string{"alpha", "beta"}, Ranks: []int{0, 1}},
	}

	Convey("Given a server with game history", t, func() {
		svc := &mockService{games: history}
		mux := newTestMux(svc)

		Convey("When GET /games is requested with a page size", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games?limit=2", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var page struct {
				Games []model.GameRecord `json:"games"`
				Count int                `json:"count"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &page), ShouldBeNil)
			So(page.Count, ShouldEqual, 2)
			So(page.Games[0].GameID, ShouldEqual, "g-3")
		})

		Convey("When GET /games/{id} finds a record", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/g-2", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got model.GameRecord
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.GameID, ShouldEqual, "g-2")
		})

		Convey("When GET /games/{id} misses", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/missing", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a negative offset is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games?offset=-1", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When POST /games carries a valid record", func() {
			body := `{"game_type":"test","participants":["alpha","beta"],"ranks":[0,1],"date":"2025-07-04T00:00:00Z","game_id":"g-4"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))

			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(svc.submitted, ShouldHaveLength, 1)
			So(svc.submitted[0].GameID, ShouldEqual, "g-4")
		})

		Convey("When the same game id is submitted twice", func() {
			body := `{"game_type":"test","participants":["alpha","beta"],"ranks":[0,1],"date":"2025-07-04T00:00:00Z","game_id":"g-4"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))
			So(rec.Code, ShouldEqual, http.StatusCreated)

			again := httptest.NewRecorder()
			mux.ServeHTTP(again, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))

			Convey("Then the repeat reports a conflict, not a server fault", func() {
				So(again.Code, ShouldEqual, http.StatusConflict)
				var resp struct {
					Code string `json:"code"`
				}
				So(json.Unmarshal(again.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "duplicate_game")
				So(svc.submitted, ShouldHaveLength, 1)
			})
		})

		Convey("When POST /games carries mismatched ranks", func() {
			body := `{"game_type":"test","participants":["alpha","beta"],"ranks":[0],"date":"2025-07-04T00:00:00Z","game_id":"g-5"}`
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body)))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(svc.submitted, ShouldBeEmpty)
		})

		Convey("When POST /games carries malformed JSON", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader("{oops")))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRecalculateEndpoint(t *testing.T) {
	Convey("Given a server", t, func() {
		svc := &mockService{snapshot: sampleSnapshot(), report: board.Report{Folded: 3, Skipped: 1}}
		mux := newTestMux(svc)

		Convey("When POST /recalculate is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recalculate", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(svc.recomputes, ShouldEqual, 1)

			var got struct {
				Status  string `json:"status"`
				Folded  int    `json:"games_folded"`
				Skipped int    `json:"games_skipped"`
				Models  int    `json:"models"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Status, ShouldEqual, "ok")
			So(got.Folded, ShouldEqual, 3)
			So(got.Skipped, ShouldEqual, 1)
			So(got.Models, ShouldEqual, 2)
		})

		Convey("When GET /recalculate is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recalculate", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(svc.recomputes, ShouldEqual, 0)
		})
	})
}
