package moviecards

import "github.com/mark-c-hall/moviecards/internal/models"

var _ Service[models.Actor] = (*ActorClient)(nil)

const ActorsPath = "actors"

// ActorClient lists, fetches and saves actors under /actors.
type ActorClient struct {
	*resource[models.Actor]
}

func NewActorClient(exec Executor, apiURL string) *ActorClient {
	return &ActorClient{newResource(exec, apiURL, ActorsPath, "Actor",
		func(a models.Actor) int { return a.ID },
		func(a *models.Actor, id int) { a.ID = id },
	)}
}
