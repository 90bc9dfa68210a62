package audio

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Cue names
const (
	Success  = "success"
	UpToDate = "uptodate"
	Error    = "error"
	Select   = "select"
)

//go:embed sounds/*.wav
var sounds embed.FS

// Player plays the embedded sound cues. The zero value is silent.
type Player struct {
	Enabled bool
	Logger  *log.Logger
}

// New creates a Player
func New(enabled bool, logger *log.Logger) *Player {
	return &Player{Enabled: enabled, Logger: logger}
}

// Play plays a cue synchronously (blocks until complete). Failures are logged
// at debug level and otherwise ignored.
func (p *Player) Play(name string) {
	if p == nil || !p.Enabled {
		return
	}

	data, err := Sound(name)
	if err != nil {
		p.debug("sound unavailable", "name", name, "err", err)
		return
	}

	streamer, format, err := DecodeSound(data)
	if err != nil {
		p.debug("sound file couldn't be decoded", "name", name, "err", err)
		return
	}
	defer streamer.Close()

	if err := playback(streamer, format); err != nil {
		p.debug("couldn't play sound", "name", name, "err", err)
	}
}

// Sound returns the raw wav data of a cue
func Sound(name string) ([]byte, error) {
	return sounds.ReadFile("sounds/" + name + ".wav")
}

// DecodeSound decodes WAV sound data into a streamer
func DecodeSound(soundData []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if len(soundData) == 0 {
		return nil, beep.Format{}, fmt.Errorf("no sound data")
	}
	return wav.Decode(bytes.NewReader(soundData))
}

func (p *Player) debug(msg string, keyvals ...interface{}) {
	if p.Logger != nil {
		p.Logger.Debug(msg, keyvals...)
	}
}
