package media

import (
	"context"
	"errors"
	"io"
)

var ErrRecorderUnavailable = errors.New("microphone unavailable")

// VoiceFileName is the name given to recorded voice messages.
const VoiceFileName = "voice.mp3"

// Recorder captures audio between Start and Stop. Stop hands back the
// encoded recording.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (contentType string, audio io.Reader, err error)
}

// UnavailableRecorder is used where no capture device exists. Start always
// fails with ErrRecorderUnavailable.
type UnavailableRecorder struct{}

func (UnavailableRecorder) Start(context.Context) error {
	return ErrRecorderUnavailable
}

func (UnavailableRecorder) Stop(context.Context) (string, io.Reader, error) {
	return "", nil, ErrRecorderUnavailable
}
