package gallery

import "errors"

// Image is one gallery entry shown as a thumbnail and in the lightbox.
type Image struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Caption      string `json:"caption,omitempty"`
}

// Step moves the lightbox cursor.
type Step string

const (
	StepNext     Step = "next"
	StepPrevious Step = "previous"
	StepStay     Step = ""
)

var (
	ErrIndexOutOfRange = errors.New("gallery index out of range")
	ErrUnknownStep     = errors.New("unknown lightbox step")
	ErrEmptyGallery    = errors.New("gallery is empty")
)

// Seed provides the default portfolio images.
func Seed() []Image {
	return []Image{
		{ID: "loft", Title: "Riverside loft", URL: "/images/gallery/loft.jpg", ThumbnailURL: "/images/gallery/thumbs/loft.jpg", Caption: "Open plan living with reclaimed oak."},
		{ID: "bistro", Title: "Corner bistro", URL: "/images/gallery/bistro.jpg", ThumbnailURL: "/images/gallery/thumbs/bistro.jpg", Caption: "Forty covers, warm brass lighting."},
		{ID: "studio", Title: "Photo studio", URL: "/images/gallery/studio.jpg", ThumbnailURL: "/images/gallery/thumbs/studio.jpg"},
		{ID: "terrace", Title: "Roof terrace", URL: "/images/gallery/terrace.jpg", ThumbnailURL: "/images/gallery/thumbs/terrace.jpg", Caption: "Planters and a cedar pergola."},
		{ID: "library", Title: "Home library", URL: "/images/gallery/library.jpg", ThumbnailURL: "/images/gallery/thumbs/library.jpg"},
		{ID: "salon", Title: "Hair salon", URL: "/images/gallery/salon.jpg", ThumbnailURL: "/images/gallery/thumbs/salon.jpg", Caption: "Six stations, one long mirror wall."},
	}
}

// Store serves gallery images for the grid and the lightbox.
type Store struct {
	items []Image
}

// NewStore returns a Store over a copy of items.
func NewStore(items []Image) *Store {
	return &Store{items: append([]Image(nil), items...)}
}

// List returns all images in display order.
func (s *Store) List() []Image {
	return append([]Image(nil), s.items...)
}

// Navigate returns the image reached from index by step, wrapping at both ends.
func (s *Store) Navigate(index int, step Step) (Image, int, error) {
	n := len(s.items)
	if n == 0 {
		return Image{}, 0, ErrEmptyGallery
	}
	if index < 0 || index >= n {
		return Image{}, 0, ErrIndexOutOfRange
	}

	switch step {
	case StepNext:
		index = (index + 1) % n
	case StepPrevious:
		index = (index - 1 + n) % n
	case StepStay:
	default:
		return Image{}, 0, ErrUnknownStep
	}
	return s.items[index], index, nil
}
