package moviecards

type Catalog struct {
	Actors *ActorClient
	Movies *MovieClient
}

func NewCatalog(exec Executor, apiURL string) *Catalog {
	return &Catalog{
		Actors: NewActorClient(exec, apiURL),
		Movies: NewMovieClient(exec, apiURL),
	}
}
