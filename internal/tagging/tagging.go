// Package tagging writes library metadata into downloaded audio files.
package tagging

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"

	"github.com/cesargomez89/synqed/internal/constants"
)

// ErrUnsupportedFormat is returned for containers we do not tag in place.
var ErrUnsupportedFormat = errors.New("unsupported file format")

const (
	descSourceID  = "SOURCE_ID"
	descSourceURL = "SOURCE_URL"
	vendor        = "synqed"
)

// Tags is the subset of song metadata written to files.
type Tags struct {
	Title    string
	Artist   string
	Artists  []string
	Album    string
	SourceID string
	URL      string
}

// TagFile writes tags to the audio file at filePath. Artwork is embedded when
// non-empty, replacing any existing front cover.
func TagFile(filePath string, tags Tags, artwork []byte) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case constants.ExtFLAC:
		return tagFLAC(filePath, tags, artwork)
	case constants.ExtMP3:
		return tagMP3(filePath, tags, artwork)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filePath))
	}
}

// HasArtwork reports whether the file already carries an embedded picture.
func HasArtwork(filePath string) (bool, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case constants.ExtFLAC:
		f, err := flac.ParseFile(filePath)
		if err != nil {
			return false, fmt.Errorf("failed to open FLAC file: %w", err)
		}
		for _, b := range f.Meta {
			if b.Type == flac.Picture {
				return true, nil
			}
		}
		return false, nil
	case constants.ExtMP3:
		tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
		if err != nil {
			return false, fmt.Errorf("failed to open MP3 file: %w", err)
		}
		defer tag.Close()
		return len(tag.GetFrames(tag.CommonID("Attached picture"))) > 0, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filePath))
	}
}

// ReadTags returns the title, artist and album stored in the file.
func ReadTags(filePath string) (Tags, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case constants.ExtFLAC:
		return readFLAC(filePath)
	case constants.ExtMP3:
		tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
		if err != nil {
			return Tags{}, fmt.Errorf("failed to open MP3 file: %w", err)
		}
		defer tag.Close()
		return Tags{Title: tag.Title(), Artist: tag.Artist(), Album: tag.Album()}, nil
	default:
		return Tags{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filePath))
	}
}

func tagMP3(filePath string, tags Tags, artwork []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if len(tags.Artists) > 1 {
		tag.AddTextFrame("TPE1", tag.DefaultEncoding(), strings.Join(tags.Artists, "\x00"))
	} else if artist := primaryArtist(tags); artist != "" {
		tag.SetArtist(artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}

	if tags.SourceID != "" || tags.URL != "" {
		tag.DeleteFrames(tag.CommonID("User defined text information frame"))
	}
	if tags.SourceID != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: descSourceID,
			Value:       tags.SourceID,
		})
	}
	if tags.URL != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: descSourceURL,
			Value:       tags.URL,
		})
	}

	if len(artwork) > 0 {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    http.DetectContentType(artwork),
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     artwork,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return nil
}

// tagFLAC rewrites the Vorbis comment block and, with artwork, the picture
// block. StreamInfo and every other block keep their original order.
func tagFLAC(filePath string, tags Tags, artwork []byte) error {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open FLAC file: %w", err)
	}

	kept := make([]*flac.MetaDataBlock, 0, len(f.Meta)+2)
	for _, b := range f.Meta {
		if b.Type == flac.VorbisComment {
			continue
		}
		if b.Type == flac.Picture && len(artwork) > 0 {
			continue
		}
		kept = append(kept, b)
	}

	cmt, err := newVorbisComment(tags)
	if err != nil {
		return err
	}
	cmtBlock := cmt.Marshal()
	kept = append(kept, &cmtBlock)

	if len(artwork) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", artwork, http.DetectContentType(artwork))
		if err != nil {
			return fmt.Errorf("failed to build picture block: %w", err)
		}
		picBlock := pic.Marshal()
		kept = append(kept, &picBlock)
	}

	f.Meta = kept
	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

func newVorbisComment(tags Tags) (*flacvorbis.MetaDataBlockVorbisComment, error) {
	cmt := flacvorbis.New()
	cmt.Vendor = vendor

	var err error
	add := func(name, value string) {
		if value == "" || err != nil {
			return
		}
		err = cmt.Add(name, value)
	}

	add(flacvorbis.FIELD_TITLE, tags.Title)
	// Multiple artists get individual ARTIST tags (recommended by Vorbis spec).
	if len(tags.Artists) > 0 {
		for _, a := range tags.Artists {
			add(flacvorbis.FIELD_ARTIST, a)
		}
	} else {
		add(flacvorbis.FIELD_ARTIST, tags.Artist)
	}
	add(flacvorbis.FIELD_ALBUM, tags.Album)
	add(descSourceID, tags.SourceID)
	add(descSourceURL, tags.URL)

	if err != nil {
		return nil, fmt.Errorf("failed to build vorbis comment: %w", err)
	}
	return cmt, nil
}

func readFLAC(filePath string) (Tags, error) {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	var out Tags
	for _, b := range f.Meta {
		if b.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*b)
		if err != nil {
			return Tags{}, fmt.Errorf("failed to parse vorbis comment: %w", err)
		}
		first := func(name string) string {
			vals, _ := cmt.Get(name)
			if len(vals) == 0 {
				return ""
			}
			return vals[0]
		}
		out.Title = first(flacvorbis.FIELD_TITLE)
		out.Artists, _ = cmt.Get(flacvorbis.FIELD_ARTIST)
		out.Artist = first(flacvorbis.FIELD_ARTIST)
		out.Album = first(flacvorbis.FIELD_ALBUM)
		out.SourceID = first(descSourceID)
		out.URL = first(descSourceURL)
	}
	return out, nil
}

func primaryArtist(tags Tags) string {
	if tags.Artist != "" {
		return tags.Artist
	}
	if len(tags.Artists) > 0 {
		return tags.Artists[0]
	}
	return ""
}
