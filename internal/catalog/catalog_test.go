package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/vinylstock/internal/config"
)

type fakeSpotify struct {
	*httptest.Server
	tokens   atomic.Int32
	tokenErr atomic.Bool
	status   atomic.Int32
	lastAuth atomic.Value
	lastURL  atomic.Value
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()
	f := &fakeSpotify{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" || r.FormValue("grant_type") != "client_credentials" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		if f.tokenErr.Load() {
			http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
			return
		}
		n := f.tokens.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, n)
	})

	api := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.lastAuth.Store(r.Header.Get("Authorization"))
			f.lastURL.Store(r.URL.String())
			if s := f.status.Load(); s != 0 {
				w.WriteHeader(int(s))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nobody" {
			api(`{"artists":{"items":[]}}`)(w, r)
			return
		}
		api(`{"artists":{"items":[{"id":"4tZwfgrHOc3mvqYlEYSvVi","name":"Daft Punk","genres":["french house"],"images":[{"url":"https://i.scdn.co/image/dp","height":640,"width":640}]}]}}`)(w, r)
	})
	mux.HandleFunc("GET /v1/artists/{id}/albums", api(`{"items":[
		{"id":"2noRn2Aes5aoNVsU6iWThc","name":"Discovery","album_type":"album","artists":[{"name":"Daft Punk"}],"release_date":"2001-03-12","images":[{"url":"https://i.scdn.co/image/disc"}],"total_tracks":14},
		{"id":"5uRdvUR7xCnHmUW8n64n9y","name":"Homework","album_type":"album","artists":[],"release_date":"1997","images":[],"total_tracks":16}
	]}`))
	album := api(`{"id":"2cWBwpqMsDJC1ZUwz813lo","name":"Random Access Memories","artists":[{"name":"Daft Punk"}],"label":"Columbia","release_date":"2013-05-17","images":[{"url":"https://i.scdn.co/image/ram"}],"total_tracks":13}`)
	mux.HandleFunc("GET /v1/albums/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "unnamed":
			api(`{"id":"unnamed","name":"  ","artists":[],"images":[],"total_tracks":3}`)(w, r)
		case "garbled":
			api(`{"id":"garbled","name":`)(w, r)
		default:
			album(w, r)
		}
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeSpotify) *Client {
	t.Helper()
	c, err := New(config.CatalogConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      f.URL + "/v1/",
		TokenURL:     f.URL + "/token",
		Market:       "US",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(config.CatalogConfig{ClientID: "id"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = New(config.CatalogConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchArtist(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	a, err := c.SearchArtist(t.Context(), "daft punk")
	require.NoError(t, err)
	assert.Equal(t, "4tZwfgrHOc3mvqYlEYSvVi", a.ID)
	assert.Equal(t, "Daft Punk", a.Name)
	assert.Equal(t, []string{"french house"}, a.Genres)
	require.NotNil(t, a.ImgURL)
	assert.Equal(t, "https://i.scdn.co/image/dp", *a.ImgURL)

	assert.Equal(t, "Bearer tok-1", f.lastAuth.Load())
	assert.Equal(t, "/v1/search?limit=1&q=daft+punk&type=artist", f.lastURL.Load())
}

func TestSearchArtist_NoMatch(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	_, err := c.SearchArtist(t.Context(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArtistAlbums(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	albums, err := c.ArtistAlbums(t.Context(), "4tZwfgrHOc3mvqYlEYSvVi")
	require.NoError(t, err)
	require.Len(t, albums, 2)

	assert.Equal(t, AlbumSummary{
		ID:          "2noRn2Aes5aoNVsU6iWThc",
		Title:       "Discovery",
		Artist:      "Daft Punk",
		Year:        2001,
		ImgURL:      albums[0].ImgURL,
		Type:        "album",
		TotalTracks: 14,
	}, albums[0])
	assert.Equal(t, "https://i.scdn.co/image/disc", *albums[0].ImgURL)
	assert.Equal(t, 1997, albums[1].Year)
	assert.Empty(t, albums[1].Artist)
	assert.Nil(t, albums[1].ImgURL)

	assert.Equal(t, "/v1/artists/4tZwfgrHOc3mvqYlEYSvVi/albums?include_groups=album&market=US", f.lastURL.Load())
}

func TestAlbum(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	a, err := c.Album(t.Context(), "4m2880jivSbbyEGAKfITCa")
	require.NoError(t, err)
	assert.Equal(t, "Daft Punk", a.Artist)
	assert.Equal(t, "Random Access Memories", a.Title)
	assert.Equal(t, "Columbia", a.Label)
	assert.Equal(t, 2013, a.Year)
	assert.Equal(t, 13, a.TotalTracks)
}

func TestTokenReused(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	for range 3 {
		_, err := c.Album(t.Context(), "x")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, f.tokens.Load())
}

func TestTokenRefreshedBeforeExpiry(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	_, err := c.Album(t.Context(), "x")
	require.NoError(t, err)

	c.now = func() time.Time { return time.Now().Add(time.Hour - 30*time.Second) }
	_, err = c.Album(t.Context(), "x")
	require.NoError(t, err)

	assert.EqualValues(t, 2, f.tokens.Load())
	assert.Equal(t, "Bearer tok-2", f.lastAuth.Load())
}

func TestTokenSharedAcrossGoroutines(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Album(context.Background(), "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, f.tokens.Load())
}

func TestUnauthorizedDropsToken(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	_, err := c.Album(t.Context(), "x")
	require.NoError(t, err)

	f.status.Store(http.StatusUnauthorized)
	_, err = c.Album(t.Context(), "x")
	assert.ErrorIs(t, err, ErrUpstream)

	f.status.Store(0)
	_, err = c.Album(t.Context(), "x")
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.tokens.Load())
}

func TestTokenFailure(t *testing.T) {
	f := newFakeSpotify(t)
	f.tokenErr.Store(true)
	c := newTestClient(t, f)

	_, err := c.SearchArtist(t.Context(), "can")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusBadRequest, want: ErrNotFound},
		{status: http.StatusBadGateway, want: ErrUpstream},
		{status: http.StatusTooManyRequests, want: ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFakeSpotify(t)
			c := newTestClient(t, f)
			f.status.Store(int32(tt.status))

			_, err := c.Album(t.Context(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInvalidUpstreamBody(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)

	for _, id := range []string{"unnamed", "garbled"} {
		_, err := c.Album(t.Context(), id)
		assert.ErrorIs(t, err, ErrUpstream, id)
	}
}

func TestBreakerOpens(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)
	f.status.Store(http.StatusInternalServerError)

	for range 5 {
		_, err := c.Album(t.Context(), "x")
		require.ErrorIs(t, err, ErrUpstream)
	}
	_, err := c.Album(t.Context(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	f := newFakeSpotify(t)
	c := newTestClient(t, f)
	f.status.Store(http.StatusNotFound)

	for range 10 {
		_, err := c.Album(t.Context(), "x")
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestReleaseYear(t *testing.T) {
	assert.Equal(t, 2004, releaseYear("2004"))
	assert.Equal(t, 2004, releaseYear("2004-03"))
	assert.Equal(t, 2004, releaseYear("2004-03-15"))
	assert.Zero(t, releaseYear("0"))
	assert.Zero(t, releaseYear("abcd"))
}
