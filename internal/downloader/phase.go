package downloader

import (
	"math"
	"strconv"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
)

// Phase is a human-readable label for what yt-dlp is currently doing.
type Phase string

const (
	PhaseFetchingInfo        Phase = "Fetching Info"
	PhasePreparingDownload   Phase = "Preparing Download"
	PhaseDownloading         Phase = "Downloading"
	PhaseExtractingAudio     Phase = "Extracting Audio"
	PhaseAddingMetadata      Phase = "Adding Metadata"
	PhaseConvertingThumbnail Phase = "Converting Thumbnail"
	PhaseEmbeddingThumbnail  Phase = "Embedding Thumbnail"
)

type phaseRule struct {
	phase    Phase
	patterns []string
}

// phaseRules is evaluated in order; the first rule with a matching substring wins.
var phaseRules = []phaseRule{
	{PhaseFetchingInfo, []string{"Downloading webpage"}},
	{PhasePreparingDownload, []string{
		"Downloading android vr player API JSON",
		"Downloading web safari player API JSON",
		"Downloading player",
		"Solving JS challenges",
		"Downloading m3u8 information",
	}},
	{PhaseDownloading, []string{"Destination:", constants.ProgressMarker}},
	{PhaseExtractingAudio, []string{"[ExtractAudio]", "Extracting audio"}},
	{PhaseAddingMetadata, []string{"[Metadata]", "Adding metadata"}},
	{PhaseConvertingThumbnail, []string{"[ThumbnailsConvertor]", "Converting thumbnail"}},
	{PhaseEmbeddingThumbnail, []string{"[EmbedThumbnail]", "Adding thumbnail"}},
}

// ClassifyLine maps an output line to a phase.
func ClassifyLine(line string) (Phase, bool) {
	for _, rule := range phaseRules {
		for _, p := range rule.patterns {
			if strings.Contains(line, p) {
				return rule.phase, true
			}
		}
	}
	return "", false
}

// ParseProgress extracts the percentage from a "download-progress:<n>%" line.
// Anything that does not parse as a finite number is rejected.
func ParseProgress(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, constants.ProgressMarker) || !strings.HasSuffix(line, "%") {
		return 0, false
	}
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, constants.ProgressMarker), "%"))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
