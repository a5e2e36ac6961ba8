package mockserver

import (
	"fmt"
	"time"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/models"
)

// Seed accounts created by Seed.
const (
	SeedAdminEmail    = "admin@cineshelf.local"
	SeedAdminPassword = "admin-password"
	SeedUserEmail     = "viewer@cineshelf.local"
	SeedUserPassword  = "viewer-password"
)

type seedMovie struct {
	title    string
	desc     string
	rating   float64
	released string
	minutes  int
	rank     int
}

var seedMovies = []seedMovie{
	{"The Shawshank Redemption", "Two imprisoned men bond over a number of years.", 9.3, "1994-09-23", 142, 1},
	{"The Godfather", "The aging patriarch of an organized crime dynasty transfers control to his son.", 9.2, "1972-03-24", 175, 2},
	{"The Dark Knight", "Batman faces the Joker in Gotham City.", 9.0, "2008-07-18", 152, 3},
	{"12 Angry Men", "A jury holdout attempts to prevent a miscarriage of justice.", 9.0, "1957-04-10", 96, 5},
	{"Schindler's List", "A businessman saves the lives of more than a thousand refugees.", 9.0, "1993-12-15", 195, 6},
	{"Pulp Fiction", "The lives of two mob hitmen intertwine in four tales of violence.", 8.9, "1994-10-14", 154, 8},
	{"Fight Club", "An insomniac office worker and a soap maker form an underground club.", 8.8, "1999-10-15", 139, 12},
	{"Inception", "A thief who steals corporate secrets through dream-sharing technology.", 8.8, "2010-07-16", 148, 14},
	{"Forrest Gump", "The presidencies of Kennedy and Johnson through the eyes of an Alabama man.", 8.8, "1994-07-06", 142, 11},
	{"The Matrix", "A hacker learns the true nature of his reality.", 8.7, "1999-03-31", 136, 16},
	{"Goodfellas", "The story of Henry Hill and his life in the mob.", 8.7, "1990-09-19", 145, 17},
	{"Se7en", "Two detectives hunt a serial killer who uses the seven deadly sins.", 8.6, "1995-09-22", 127, 19},
	{"Spirited Away", "A girl wanders into a world ruled by gods and spirits.", 8.6, "2001-07-20", 125, 29},
	{"Parasite", "Greed and class discrimination threaten a symbiotic relationship.", 8.5, "2019-05-30", 132, 31},
	{"Alien", "The crew of a commercial spacecraft encounters a deadly lifeform.", 8.5, "1979-05-25", 117, 51},
	{"Whiplash", "A promising young drummer enrolls at a cut-throat music conservatory.", 8.5, "2014-10-10", 106, 42},
	{"The Prestige", "Two stage magicians engage in a battle to create the ultimate illusion.", 8.5, "2006-10-20", 130, 44},
	{"Back to the Future", "A teenager is accidentally sent thirty years into the past.", 8.5, "1985-07-03", 116, 40},
	{"Heat", "A group of professional bank robbers and the detective pursuing them.", 8.3, "1995-12-15", 170, 110},
	{"Amélie", "A shy waitress decides to change the lives of those around her.", 8.3, "2001-04-25", 122, 115},
	{"Brazil", "A bureaucrat in a dystopian society becomes an enemy of the state.", 7.9, "1985-12-18", 132, 0},
	{"Zodiac", "A cartoonist becomes obsessed with tracking down the Zodiac Killer.", 7.7, "2007-03-02", 157, 0},
	{"Arrival", "A linguist works with the military to communicate with alien lifeforms.", 7.9, "2016-11-11", 116, 0},
	{"Drive", "A stunt driver moonlights as a getaway driver.", 7.8, "2011-09-16", 100, 0},
	{"Untitled Short", "", 0, "", 0, 0},
}

// Seed fills store with a demo catalog, one admin and one regular user.
func Seed(store *Store) error {
	for _, sm := range seedMovies {
		m := models.Movie{
			Title:           sm.title,
			Description:     sm.desc,
			Rating:          sm.rating,
			DurationMinutes: sm.minutes,
			IMDbRank:        sm.rank,
		}
		if sm.released != "" {
			d, err := time.Parse(constants.ReleaseDateLayout, sm.released)
			if err != nil {
				return fmt.Errorf("seed %q: %w", sm.title, err)
			}
			m.ReleaseDate = models.NewDate(d.Year(), d.Month(), d.Day())
		}
		store.Create(m)
	}

	if _, err := store.AddUser("Admin", SeedAdminEmail, SeedAdminPassword, constants.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := store.AddUser("Viewer", SeedUserEmail, SeedUserPassword, constants.RoleUser); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	return nil
}

// SeedCount is the number of movies Seed adds.
func SeedCount() int {
	return len(seedMovies)
}
