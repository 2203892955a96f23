package entity

type UploadedImage struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

type RejectedImage struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BatchResult reports every file of an upload batch in exactly one list.
type BatchResult struct {
	Uploaded []UploadedImage `json:"uploaded"`
	Rejected []RejectedImage `json:"rejected"`
	Failed   []RejectedImage `json:"failed"`
}

// GalleryItem is one staged image awaiting its metadata.
type GalleryItem struct {
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Published   bool   `json:"published"`
}

// GallerySettings are applied to every staged item before commit.
type GallerySettings struct {
	Category  string `json:"category"`
	Published bool   `json:"published"`
}
