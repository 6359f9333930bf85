package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/apivalidation/transform"
)

type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	ImgURL *string  `json:"img_url"`
}

// AlbumSummary is one entry of an artist's discography.
type AlbumSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Year        int     `json:"year"`
	ImgURL      *string `json:"img_url"`
	Type        string  `json:"type"`
	TotalTracks int     `json:"total_tracks"`
}

// AlbumDetails has the shape of a new inventory item so a form can be
// pre-filled from it.
type AlbumDetails struct {
	Artist      string  `json:"artist"`
	Title       string  `json:"title"`
	Label       string  `json:"label"`
	Year        int     `json:"year"`
	ImgURL      *string `json:"img_url"`
	TotalTracks int     `json:"total_tracks"`
}

type (
	image struct {
		URL string `json:"url"`
	}

	artistRef struct {
		Name string `json:"name"`
	}

	artistObject struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Genres []string `json:"genres"`
		Images []image  `json:"images"`
	}

	albumObject struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		AlbumType   string      `json:"album_type"`
		Artists     []artistRef `json:"artists"`
		Label       string      `json:"label"`
		ReleaseDate string      `json:"release_date"`
		Images      []image     `json:"images"`
		TotalTracks int         `json:"total_tracks"`
	}

	artistSearch struct {
		Artists artistPage `json:"artists"`
	}

	artistPage struct {
		Items []artistObject `json:"items"`
	}

	albumPage struct {
		Items []albumObject `json:"items"`
	}
)

// Upstream records without an id or a name cannot be shown or pre-filled,
// so responses holding one are rejected as a whole.

func (a *artistObject) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&a.ID, v.Required),
		v.Field(&a.Name, v.Required),
	}
}

func (a *artistObject) Normalize() { transform.StructTrimSpace(a) }

func (a *albumObject) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&a.ID, v.Required),
		v.Field(&a.Name, v.Required),
		v.Field(&a.TotalTracks, v.Min(0)),
	}
}

func (a *albumObject) Normalize() { transform.StructTrimSpace(a) }

func (s *artistSearch) Rules() []*v.FieldRules {
	return []*v.FieldRules{v.Field(&s.Artists)}
}

func (p *artistPage) Rules() []*v.FieldRules {
	return []*v.FieldRules{v.Field(&p.Items)}
}

func (p *albumPage) Rules() []*v.FieldRules {
	return []*v.FieldRules{v.Field(&p.Items)}
}

func firstImage(images []image) *string {
	if len(images) == 0 {
		return nil
	}
	return &images[0].URL
}

func firstArtist(artists []artistRef) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

// releaseYear reads the year from a release date of any precision
// (2004, 2004-03 or 2004-03-15). It returns 0 when there is none.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// SearchArtist returns the best match for query.
func (c *Client) SearchArtist(ctx context.Context, query string) (*Artist, error) {
	var resp artistSearch
	q := url.Values{"q": {query}, "type": {"artist"}, "limit": {"1"}}
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Artists.Items) == 0 {
		return nil, fmt.Errorf("artist %q: %w", query, ErrNotFound)
	}
	a := resp.Artists.Items[0]
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return &Artist{ID: a.ID, Name: a.Name, Genres: genres, ImgURL: firstImage(a.Images)}, nil
}

// ArtistAlbums lists the studio albums of an artist available in the
// configured market.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string) ([]AlbumSummary, error) {
	var resp albumPage
	q := url.Values{"include_groups": {"album"}}
	if c.market != "" {
		q.Set("market", c.market)
	}
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID)+"/albums", q, &resp); err != nil {
		return nil, err
	}

	out := make([]AlbumSummary, 0, len(resp.Items))
	for _, a := range resp.Items {
		out = append(out, AlbumSummary{
			ID:          a.ID,
			Title:       a.Name,
			Artist:      firstArtist(a.Artists),
			Year:        releaseYear(a.ReleaseDate),
			ImgURL:      firstImage(a.Images),
			Type:        a.AlbumType,
			TotalTracks: a.TotalTracks,
		})
	}
	return out, nil
}

// Album returns the details of one album.
func (c *Client) Album(ctx context.Context, albumID string) (*AlbumDetails, error) {
	var a albumObject
	if err := c.get(ctx, "/albums/"+url.PathEscape(albumID), nil, &a); err != nil {
		return nil, err
	}
	return &AlbumDetails{
		Artist:      firstArtist(a.Artists),
		Title:       a.Name,
		Label:       a.Label,
		Year:        releaseYear(a.ReleaseDate),
		ImgURL:      firstImage(a.Images),
		TotalTracks: a.TotalTracks,
	}, nil
}
