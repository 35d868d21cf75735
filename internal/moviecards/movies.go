package moviecards

import "github.com/mark-c-hall/moviecards/internal/models"

var _ Service[models.Movie] = (*MovieClient)(nil)

const MoviesPath = "movies"

// MovieClient lists, fetches and saves movies under /movies.
type MovieClient struct {
	*resource[models.Movie]
}

func NewMovieClient(exec Executor, apiURL string) *MovieClient {
	return &MovieClient{newResource(exec, apiURL, MoviesPath, "Movie",
		func(m models.Movie) int { return m.ID },
		func(m *models.Movie, id int) { m.ID = id },
	)}
}
