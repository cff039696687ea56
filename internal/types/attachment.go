package types

import (
	"encoding/base64"
	"errors"
	"strings"
)

type AttachmentKind string

const (
	AttachmentNone         AttachmentKind = "none"
	AttachmentImage        AttachmentKind = "image"
	AttachmentRecording    AttachmentKind = "recording"
	AttachmentTranscribing AttachmentKind = "transcribing"
)

// MaxImageBytes caps image attachments at 20MB, validated before any
// network call.
const MaxImageBytes = 20 << 20

var (
	ErrAttachmentNotImage = errors.New("attachment is not an image")
	ErrAttachmentTooLarge = errors.New("image exceeds the 20MB limit")
)

// Attachment is the single attachment slot for the next send. Image and
// audio tracks are mutually exclusive: the slot holds one kind at a time
// and adopting one kind discards the other.
type Attachment struct {
	Kind    AttachmentKind
	Name    string
	MIME    string
	Data    []byte
	Preview string
}

func NoAttachment() Attachment { return Attachment{Kind: AttachmentNone} }

// NewImageAttachment validates and adopts an image for the next send.
// Rejections happen locally; accepted images carry a data-URL preview.
func NewImageAttachment(name, mime string, data []byte) (Attachment, error) {
	if !strings.HasPrefix(mime, "image/") {
		return Attachment{}, ErrAttachmentNotImage
	}
	if len(data) > MaxImageBytes {
		return Attachment{}, ErrAttachmentTooLarge
	}
	return Attachment{
		Kind:    AttachmentImage,
		Name:    name,
		MIME:    mime,
		Data:    data,
		Preview: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

func RecordingAttachment() Attachment { return Attachment{Kind: AttachmentRecording} }

func TranscribingAttachment(name, mime string, data []byte) Attachment {
	return Attachment{Kind: AttachmentTranscribing, Name: name, MIME: mime, Data: data}
}

func (a Attachment) None() bool { return a.Kind == AttachmentNone || a.Kind == "" }

func (a Attachment) Image() bool { return a.Kind == AttachmentImage }
