package moviecards

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mark-c-hall/moviecards/internal/moviecards")

// Executor performs the HTTP round trips. Non-2xx answers are expected to
// come back as *rest.StatusError.
type Executor interface {
	Get(ctx context.Context, url string, out any) error
	Post(ctx context.Context, url string, body, out any) error
	Put(ctx context.Context, url string, body any) error
}

// Service is what ActorClient and MovieClient offer for their entity type.
type Service[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int) (T, error)
	Save(ctx context.Context, entity T) (T, error)
}

type resource[T any] struct {
	exec    Executor
	name    string
	baseURL string
	getID   func(T) int
	setID   func(*T, int)
}

func newResource[T any](exec Executor, apiURL, path, name string, getID func(T) int, setID func(*T, int)) *resource[T] {
	return &resource[T]{
		exec:    exec,
		name:    name,
		baseURL: strings.TrimRight(apiURL, "/") + "/" + path,
		getID:   getID,
		setID:   setID,
	}
}

// BaseURL is the collection URL, e.g. https://host/actors.
func (r *resource[T]) BaseURL() string {
	return r.baseURL
}

// GetAll lists the collection in the order the service returns it.
func (r *resource[T]) GetAll(ctx context.Context) ([]T, error) {
	op := r.name + "Client.GetAll"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var items []T
	if err := r.exec.Get(ctx, r.baseURL, &items); err != nil {
		return nil, fail(span, newRemoteError(op, err))
	}
	if items == nil {
		items = []T{}
	}
	span.SetAttributes(attribute.Int("moviecards.count", len(items)))
	return items, nil
}

func (r *resource[T]) GetByID(ctx context.Context, id int) (T, error) {
	op := r.name + "Client.GetByID"
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attribute.Int("moviecards.id", id)))
	defer span.End()

	var item T
	if err := r.exec.Get(ctx, r.itemURL(id), &item); err != nil {
		var zero T
		return zero, fail(span, lookupError(op, r.name, id, err, anyClientError))
	}
	return item, nil
}

// Save creates the entity when its id is 0 and updates it otherwise. A
// created entity is returned with the id assigned by the service when that id
// is numeric.
func (r *resource[T]) Save(ctx context.Context, entity T) (T, error) {
	id := r.getID(entity)
	if id != 0 {
		return r.update(ctx, id, entity)
	}

	op := r.name + "Client.Save"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var created string
	if err := r.exec.Post(ctx, r.baseURL, entity, &created); err != nil {
		var zero T
		return zero, fail(span, newRemoteError(op, err))
	}

	saved := entity
	if newID, err := strconv.Atoi(strings.TrimSpace(created)); err == nil && newID > 0 {
		r.setID(&saved, newID)
		span.SetAttributes(attribute.Int("moviecards.id", newID))
	}
	return saved, nil
}

func (r *resource[T]) update(ctx context.Context, id int, entity T) (T, error) {
	op := r.name + "Client.Update"
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attribute.Int("moviecards.id", id)))
	defer span.End()

	if err := r.exec.Put(ctx, r.itemURL(id), entity); err != nil {
		var zero T
		return zero, fail(span, lookupError(op, r.name, id, err, onlyNotFound))
	}
	return entity, nil
}

func (r *resource[T]) itemURL(id int) string {
	return fmt.Sprintf("%s/%d", r.baseURL, id)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
