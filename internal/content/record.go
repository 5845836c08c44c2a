package content

// Category groups records for navigation and listing.
type Category string

const (
	CategoryContent   Category = "content"
	CategoryPeople    Category = "people"
	CategorySurvivors Category = "survivors"
	CategoryEvents    Category = "events"
	CategoryNews      Category = "news"
)

// Display modes for the image block of a record.
const (
	DisplayGallery  = "gallery"
	DisplayCarousel = "carousel"
)

// LocalizedText holds the Hebrew original and its English translation.
// The English side is routinely empty until translated by hand.
type LocalizedText struct {
	He string `json:"he"`
	En string `json:"en"`
}

// FileAttachment is a downloadable file surfaced outside the content HTML.
type FileAttachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Record is one content item, persisted as data/posts/<id>.json.
type Record struct {
	ID               string           `json:"id"`
	Slug             string           `json:"slug"`
	Title            LocalizedText    `json:"title"`
	Category         Category         `json:"category"`
	Date             string           `json:"date"`
	Author           string           `json:"author"`
	Excerpt          LocalizedText    `json:"excerpt"`
	Content          LocalizedText    `json:"content"`
	Images           []string         `json:"images"`
	Videos           []string         `json:"videos"`
	Files            []FileAttachment `json:"files,omitempty"`
	ParentPage       string           `json:"parentPage"`
	ImageDisplayMode string           `json:"imageDisplayMode"`
}

// DisplayModeFor picks the image display mode from the image count:
// more than 3 images use a carousel, anything else a gallery.
func DisplayModeFor(imageCount int) string {
	if imageCount > 3 {
		return DisplayCarousel
	}
	return DisplayGallery
}
