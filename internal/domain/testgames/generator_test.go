package testgames_test

import (
	"testing"
	"time"

	"github.com/valyrian-games/leaderboard/internal/domain/testgames"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		rec := testgames.Generate(testgames.Config{})

		Convey("Then the record passes canonical validation", func() {
			So(rec.Validate(), ShouldBeNil)
		})

		Convey("Then the field size is within bounds", func() {
			So(len(rec.Participants), ShouldBeBetweenOrEqual, 2, 6)
			So(rec.Ranks, ShouldHaveLength, len(rec.Participants))
			So(rec.Scores, ShouldHaveLength, len(rec.Participants))
		})

		Convey("Then the ranks form a permutation without ties", func() {
			seen := make(map[int]bool)
			for _, r := range rec.Ranks {
				So(r, ShouldBeBetweenOrEqual, 0, len(rec.Ranks)-1)
				So(seen[r], ShouldBeFalse)
				seen[r] = true
			}
		})

		Convey("Then participant names are unique within the game", func() {
			seen := make(map[string]bool)
			for _, p := range rec.Participants {
				So(seen[p], ShouldBeFalse)
				seen[p] = true
			}
		})

		Convey("Then better ranks never score below worse ranks", func() {
			for i := range rec.Ranks {
				for j := range rec.Ranks {
					if rec.Ranks[i] < rec.Ranks[j] {
						So(rec.Scores[i], ShouldBeGreaterThanOrEqualTo, rec.Scores[j])
					}
				}
			}
		})
	})

	Convey("Given a fixed field size and game type", t, func() {
		rec := testgames.Generate(testgames.Config{
			NumParticipants: 4,
			GameType:        "CodeGolf",
		})

		So(rec.Participants, ShouldHaveLength, 4)
		So(rec.GameType, ShouldEqual, "CodeGolf")
	})

	Convey("Given a fixed clock", t, func() {
		now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
		rec := testgames.Generate(testgames.Config{Clock: func() time.Time { return now }})

		when, ok := rec.When()
		So(ok, ShouldBeTrue)
		So(when.After(now.AddDate(0, 0, -31)), ShouldBeTrue)
		So(when.After(now), ShouldBeFalse)
	})

	Convey("Given an existing model pool of one name", t, func() {
		found := false
		for i := 0; i < 20 && !found; i++ {
			rec := testgames.Generate(testgames.Config{
				NumParticipants: 2,
				ExistingModels:  []string{"champion"},
			})
			for _, p := range rec.Participants {
				if p == "champion" {
					found = true
				}
			}
		}

		Convey("Then the pool is drawn from with high probability", func() {
			So(found, ShouldBeTrue)
		})
	})

	Convey("Given NewModelsOnly", t, func() {
		rec := testgames.Generate(testgames.Config{
			NumParticipants: 3,
			ExistingModels:  []string{"champion"},
			NewModelsOnly:   true,
		})

		for _, p := range rec.Participants {
			So(p, ShouldNotEqual, "champion")
		}
	})
}
