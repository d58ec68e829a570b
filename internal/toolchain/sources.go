package toolchain

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cesargomez89/synqed/internal/constants"
)

var ErrUnsupportedPlatform = errors.New("no release for this platform")

// tool describes where a managed binary comes from and how to get the
// executable out of its release asset.
type tool struct {
	asset          func(version, goos, goarch string) (string, error)
	unpack         func(r io.Reader) (io.Reader, error)
	baseURL        string
	defaultVersion string
	optional       bool
}

var tools = map[string]tool{
	constants.ToolYtDlp: {
		asset:          ytDlpAsset,
		unpack:         unpackRaw,
		baseURL:        constants.YtDlpReleaseURL,
		defaultVersion: constants.DefaultYtDlpVersion,
	},
	constants.ToolFFmpeg: {
		asset:          ffmpegAsset,
		unpack:         unpackGzip,
		baseURL:        constants.FFmpegReleaseURL,
		defaultVersion: constants.DefaultFFmpegVersion,
	},
	constants.ToolBun: {
		asset:          bunAsset,
		unpack:         unpackZipEntry(constants.ToolBun),
		baseURL:        constants.BunReleaseURL,
		defaultVersion: constants.DefaultBunVersion,
		optional:       true,
	},
}

func ytDlpAsset(version, goos, _ string) (string, error) {
	return version + "/" + releaseAsset(goos), nil
}

func releaseAsset(goos string) string {
	switch goos {
	case "windows":
		return "yt-dlp.exe"
	case "darwin":
		return "yt-dlp_macos"
	default:
		return "yt-dlp_linux"
	}
}

// ffmpegAsset names a gzipped static build, e.g. b6.0/ffmpeg-linux-x64.gz.
func ffmpegAsset(version, goos, goarch string) (string, error) {
	osName := map[string]string{"linux": "linux", "darwin": "darwin", "windows": "win32"}[goos]
	arch := map[string]string{"amd64": "x64", "arm64": "arm64"}[goarch]
	if osName == "" || arch == "" {
		return "", fmt.Errorf("%w: ffmpeg %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return fmt.Sprintf("%s/ffmpeg-%s-%s.gz", version, osName, arch), nil
}

// bunAsset names a release zip, e.g. bun-v1.2.20/bun-linux-x64.zip.
func bunAsset(version, goos, goarch string) (string, error) {
	osName := map[string]string{"linux": "linux", "darwin": "darwin", "windows": "windows"}[goos]
	arch := map[string]string{"amd64": "x64", "arm64": "aarch64"}[goarch]
	if osName == "" || arch == "" {
		return "", fmt.Errorf("%w: bun %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return fmt.Sprintf("bun-v%s/bun-%s-%s.zip", version, osName, arch), nil
}

func unpackGzip(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

// unpackZipEntry extracts the first entry named name (or name.exe) from a zip
// archive. The archive is buffered since zip needs random access.
func unpackZipEntry(name string) func(io.Reader) (io.Reader, error) {
	return func(r io.Reader) (io.Reader, error) {
		data, err := io.ReadAll(io.LimitReader(r, constants.MaxToolArchiveSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > constants.MaxToolArchiveSize {
			return nil, fmt.Errorf("archive exceeds %d bytes", constants.MaxToolArchiveSize)
		}

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		for _, f := range zr.File {
			base := path.Base(f.Name)
			if f.FileInfo().IsDir() || (base != name && base != name+".exe") {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			bin, err := io.ReadAll(rc)
			if err != nil {
				return nil, err
			}
			return bytes.NewReader(bin), nil
		}
		return nil, fmt.Errorf("%w: %s not in archive", ErrToolNotFound, name)
	}
}
