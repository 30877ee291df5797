package catalog

import "math"

// ComputeStats derives aggregate statistics from books. An empty book
// list yields a zeroed Stats rather than an error.
func ComputeStats(books []FileRecord) Stats {
	stats := Stats{FileTypeCounts: map[string]int{}}
	if len(books) == 0 {
		return stats
	}

	dirs := make(map[string]struct{}, len(books))
	var totalMB float64
	largest := books[0]
	for _, b := range books {
		totalMB += b.SizeMB
		stats.FileTypeCounts[b.Extension]++
		dirs[b.Directory] = struct{}{}
		if b.SizeMB > largest.SizeMB {
			largest = b
		}
	}

	stats.TotalBooks = len(books)
	stats.TotalSizeMB = round2(totalMB)
	stats.TotalSizeGB = round2(totalMB / 1024)
	stats.UniqueDirectoryCount = len(dirs)
	stats.LargestBook = &largest
	stats.AverageSizeMB = round2(totalMB / float64(len(books)))
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
