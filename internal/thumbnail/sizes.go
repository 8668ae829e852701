package thumbnail

import "fmt"

// SizePreset is one canonical thumbnail size with a deep link to the
// on-demand endpoint.
type SizePreset struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// commonSizes are the canonical presets offered for every image.
var commonSizes = [...][2]int{
	{150, 150},
	{300, 300},
	{600, 600},
	{800, 600},
}

// CommonSizes returns the canonical size presets for a source file with
// request URLs for the on-demand thumbnail endpoint. Pure construction;
// nothing is generated or queried.
func CommonSizes(fileID int64) []SizePreset {
	presets := make([]SizePreset, 0, len(commonSizes))
	for _, wh := range commonSizes {
		presets = append(presets, SizePreset{
			Width:  wh[0],
			Height: wh[1],
			URL:    fmt.Sprintf("/api/files/%d/thumbnail?width=%d&height=%d", fileID, wh[0], wh[1]),
		})
	}
	return presets
}
