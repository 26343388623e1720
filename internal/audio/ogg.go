// Package audio validates that an uploaded stream is a structurally sound
// Ogg Opus container before anything is persisted. It parses the page
// framing and the two mandatory header packets (OpusHead, OpusTags); it
// does not verify page checksums and never decodes audio.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidContainer reports a stream that is not a well-formed Ogg Opus
// container. All validation failures wrap it.
var ErrInvalidContainer = errors.New("invalid ogg opus container")

const (
	pageHeaderSize = 27

	flagContinued = 0x01
	flagBOS       = 0x02
)

var (
	capturePattern = []byte("OggS")
	opusHeadMagic  = []byte("OpusHead")
	opusTagsMagic  = []byte("OpusTags")
)

type page struct {
	headerType byte
	serial     uint32
	sequence   uint32
	body       []byte
}

// ValidateOggOpus checks that r holds an Ogg stream whose first logical
// bitstream carries an Opus identification header followed by a comment
// header. On success the reader is rewound to the start so the same stream
// can be re-read for upload.
func ValidateOggOpus(r io.ReadSeeker) error {
	ident, err := readPage(r)
	if err != nil {
		return err
	}
	if ident.headerType&flagBOS == 0 {
		return fmt.Errorf("%w: first page is not a stream begin page", ErrInvalidContainer)
	}
	if ident.headerType&flagContinued != 0 {
		return fmt.Errorf("%w: first page marked as packet continuation", ErrInvalidContainer)
	}
	if ident.sequence != 0 {
		return fmt.Errorf("%w: first page sequence is %d, want 0", ErrInvalidContainer, ident.sequence)
	}
	if err := validateOpusHead(ident.body); err != nil {
		return err
	}

	// RFC 7845: the comment header begins on the page following the
	// identification header, in the same logical bitstream.
	tags, err := readPage(r)
	if err != nil {
		return err
	}
	if tags.serial != ident.serial {
		return fmt.Errorf("%w: unexpected second logical bitstream", ErrInvalidContainer)
	}
	if !bytes.HasPrefix(tags.body, opusTagsMagic) {
		return fmt.Errorf("%w: comment header missing", ErrInvalidContainer)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind stream: %w", err)
	}
	return nil
}

// readPage reads one Ogg page header plus body. Page checksums are not
// verified; this is a structural check only.
func readPage(r io.Reader) (*page, error) {
	header := make([]byte, pageHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: truncated page header", ErrInvalidContainer)
	}
	if !bytes.Equal(header[0:4], capturePattern) {
		return nil, fmt.Errorf("%w: bad capture pattern", ErrInvalidContainer)
	}
	if header[4] != 0 {
		return nil, fmt.Errorf("%w: unsupported stream structure version %d", ErrInvalidContainer, header[4])
	}

	segments := int(header[26])
	if segments == 0 {
		return nil, fmt.Errorf("%w: page has no segments", ErrInvalidContainer)
	}
	lacing := make([]byte, segments)
	if _, err := io.ReadFull(r, lacing); err != nil {
		return nil, fmt.Errorf("%w: truncated segment table", ErrInvalidContainer)
	}
	bodyLen := 0
	for _, l := range lacing {
		bodyLen += int(l)
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: truncated page body", ErrInvalidContainer)
	}

	return &page{
		headerType: header[5],
		serial:     binary.LittleEndian.Uint32(header[14:18]),
		sequence:   binary.LittleEndian.Uint32(header[18:22]),
		body:       body,
	}, nil
}

// validateOpusHead checks the identification header packet (RFC 7845 §5.1).
func validateOpusHead(body []byte) error {
	if !bytes.HasPrefix(body, opusHeadMagic) {
		return fmt.Errorf("%w: not an opus stream", ErrInvalidContainer)
	}
	if len(body) < 19 {
		return fmt.Errorf("%w: identification header too short", ErrInvalidContainer)
	}
	// Major version must be 0; minor version bumps are compatible.
	if version := body[8]; version>>4 != 0 {
		return fmt.Errorf("%w: unsupported opus version %d", ErrInvalidContainer, version)
	}
	if channels := body[9]; channels == 0 {
		return fmt.Errorf("%w: zero channel count", ErrInvalidContainer)
	}
	return nil
}
