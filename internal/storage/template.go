package storage

import (
	"path/filepath"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
)

// SongsDir returns the directory downloads are written to inside a library.
func SongsDir(libraryDir string) string {
	return filepath.Join(libraryDir, constants.SongsDir)
}

// OutputTemplate returns the yt-dlp output template rooted in the library's
// Songs directory.
func OutputTemplate(libraryDir string) string {
	return filepath.Join(SongsDir(libraryDir), constants.OutputNamePattern)
}

// SongFilename reduces a resolved download path to the base name the audio
// extractor leaves behind, i.e. with the extension replaced by format.
func SongFilename(resolved, format string) string {
	base := filepath.Base(strings.TrimSpace(resolved))
	return strings.TrimSuffix(base, filepath.Ext(base)) + ParseExtension(format)
}

// SongPath joins a stored song filename with the library's Songs directory.
func SongPath(libraryDir, filename string) string {
	return filepath.Join(SongsDir(libraryDir), filepath.Base(filename))
}

// PlaylistPath returns the m3u file for name inside the library.
func PlaylistPath(libraryDir, name string) string {
	return filepath.Join(libraryDir, constants.PlaylistsDir, Sanitize(name)+constants.ExtM3U)
}

// PlaylistEntry is the path of a song relative to the playlists directory.
func PlaylistEntry(filename string) string {
	return filepath.ToSlash(filepath.Join("..", constants.SongsDir, filepath.Base(filename)))
}

// ParseExtension parses an extension string, ensuring it starts with a dot
func ParseExtension(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
