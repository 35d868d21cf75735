package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-c-hall/moviecards/internal/models"
)

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /actors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 1, "name": "Actor 1", "birthDate": "1975-06-09", "country": "Spain", "deadDate": null},
			{"id": 2, "name": "Actor 2", "birthDate": "1975-06-09", "country": "USA", "deadDate": "2023-01-15"}
		]`)
	})
	mux.HandleFunc("GET /actors/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("GET /movies", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("POST /movies", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "3")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestActorsList_JSON(t *testing.T) {
	server := newService(t)

	code, out, errOut := run(t, "", "--api-url", server.URL, "actors", "list")
	require.Equal(t, ExitOK, code, errOut)

	var actors []models.Actor
	require.NoError(t, json.Unmarshal([]byte(out), &actors))
	require.Len(t, actors, 2)
	assert.Nil(t, actors[0].DeadDate)
	assert.Equal(t, "2023-01-15", actors[1].DeadDate.String())
}

func TestActorsList_YAML(t *testing.T) {
	server := newService(t)

	code, out, errOut := run(t, "", "--api-url", server.URL, "-o", "yaml", "actors", "list")
	require.Equal(t, ExitOK, code, errOut)

	assert.Contains(t, out, "name: Actor 1")
	assert.Contains(t, out, "1975-06-09")
	assert.Contains(t, out, "deadDate: null")
}

func TestActorsGet_NotFound(t *testing.T) {
	server := newService(t)

	code, _, errOut := run(t, "", "--api-url", server.URL, "actors", "get", "999")
	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "not found")
}

func TestActorsGet_InvalidID(t *testing.T) {
	code, _, errOut := run(t, "", "--api-url", "http://127.0.0.1:1", "actors", "get", "abc")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, `invalid actor id "abc"`)
}

func TestMoviesList_ServerError(t *testing.T) {
	server := newService(t)

	code, out, errOut := run(t, "", "--api-url", server.URL, "movies", "list")
	assert.Equal(t, ExitError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "500")
}

func TestMoviesSave_FromStdin(t *testing.T) {
	server := newService(t)

	code, out, errOut := run(t, `{"id": 0, "title": "New Movie", "director": "New Director"}`,
		"--api-url", server.URL, "movies", "save")
	require.Equal(t, ExitOK, code, errOut)

	var movie models.Movie
	require.NoError(t, json.Unmarshal([]byte(out), &movie))
	assert.Equal(t, 3, movie.ID)
	assert.Equal(t, "New Movie", movie.Title)
}

func TestMoviesSave_FromFile(t *testing.T) {
	server := newService(t)
	path := filepath.Join(t.TempDir(), "movie.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "File Movie"}`), 0o600))

	code, out, errOut := run(t, "", "--api-url", server.URL, "movies", "save", "-f", path)
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, `"title": "File Movie"`)
}

func TestMoviesSave_EmptyInput(t *testing.T) {
	code, _, errOut := run(t, "", "--api-url", "http://127.0.0.1:1", "movies", "save")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "no JSON input")
}

func TestInvalidOutputFormat(t *testing.T) {
	code, _, errOut := run(t, "", "-o", "xml", "actors", "list")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "invalid output format")
}

func TestPrintResult_JSONIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "json", map[string]int{"id": 1}))
	assert.Equal(t, "{\n  \"id\": 1\n}\n", buf.String())
}

func TestReadEntity_UnknownField(t *testing.T) {
	_, err := readEntity[models.Actor](strings.NewReader(`{"nombre": "x"}`), "-")
	assert.Error(t, err)
}
