package catalog

// FileRecord describes one discovered ebook file.
type FileRecord struct {
	Filename  string  `json:"filename"`
	FullPath  string  `json:"full_path"`
	Directory string  `json:"directory"`
	Extension string  `json:"extension"`
	SizeMB    float64 `json:"size_mb"`
}

// Metadata describes when and from where a catalog was built.
type Metadata struct {
	LastRefreshEpoch  float64  `json:"last_refresh_epoch"`
	RefreshDate       string   `json:"refresh_date"`
	TotalBooks        int      `json:"total_books"`
	SourceDirectories []string `json:"source_directories"`
	BuildTimeSeconds  float64  `json:"build_time_seconds"`
	// Fingerprint is an xxhash over the deduplicated book set, used to
	// detect rebuilds that found nothing new. Older catalogs lack it.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Stats are aggregate figures derived from the book list. They are
// recomputed on every catalog write and never persisted independently.
type Stats struct {
	TotalBooks           int            `json:"total_books"`
	TotalSizeMB          float64        `json:"total_size_mb"`
	TotalSizeGB          float64        `json:"total_size_gb"`
	FileTypeCounts       map[string]int `json:"file_type_counts"`
	UniqueDirectoryCount int            `json:"unique_directory_count"`
	LargestBook          *FileRecord    `json:"largest_book"`
	AverageSizeMB        float64        `json:"average_size_mb"`
}

// Catalog is the persisted snapshot of all discovered ebook files.
// It is replaced wholesale on rebuild or deduplicate, never patched.
type Catalog struct {
	Metadata Metadata     `json:"metadata"`
	Books    []FileRecord `json:"books"`
	Stats    Stats        `json:"stats"`
}
