package detector

// MediaPipe service contract
//
// The landmark model runs in a long-lived child process, normally
// scripts/mediapipe_service.py, started as
//
//	python mediapipe_service.py --max-hands N \
//		--min-detection-confidence C --min-tracking-confidence C
//
// For every frame the detector writes a 4-byte big-endian length followed
// by that many bytes of JPEG to the service's stdin. The service answers
// each frame with exactly one line of JSON on stdout:
//
//	{"hands": [{"handedness": "Right", "score": 0.97,
//	            "points": [{"x": 0.41, "y": 0.62, "z": -0.03, "visibility": 0.99}, ...]}]}
//
// Points are the 21 MediaPipe hand landmarks in image-normalized
// coordinates with the origin at the top-left. "visibility" may be
// omitted. A frame the service cannot analyze is answered with
// {"hands": [], "error": "..."} and the stream stays usable. Closing stdin
// asks the service to exit; diagnostics go to stderr.

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Environment overrides for locating the service.
const (
	ScriptEnv = "FINGERCURSOR_MEDIAPIPE_SCRIPT"
	PythonEnv = "FINGERCURSOR_PYTHON"
)

const (
	scriptName    = "mediapipe_service.py"
	maxFrameBytes = 16 << 20
)

var (
	// ErrServiceNotFound is returned when no service script can be located.
	ErrServiceNotFound = errors.New("mediapipe service script not found")
	// ErrFrameRejected wraps an error the service reported for one frame.
	ErrFrameRejected = errors.New("mediapipe service rejected frame")
)

type serviceReply struct {
	Hands []serviceHand `json:"hands"`
	Error string        `json:"error,omitempty"`
}

type serviceHand struct {
	Points     []servicePoint `json:"points"`
	Handedness string         `json:"handedness"`
	Score      float64        `json:"score"`
}

type servicePoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// landmarks copies up to NumLandmarks points; missing points stay zero.
func (h serviceHand) landmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	for i, p := range h.Points {
		if i == NumLandmarks {
			break
		}
		lm.Points[i] = Point3D(p)
	}
	return lm
}

func serviceArgs(script string, cfg Config) []string {
	return []string{
		script,
		"--max-hands", strconv.Itoa(cfg.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(cfg.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(cfg.MinTrackingConf, 'f', 2, 64),
	}
}

// writeFrame sends one length-prefixed JPEG.
func writeFrame(w io.Writer, jpeg []byte) error {
	if len(jpeg) > maxFrameBytes {
		return fmt.Errorf("frame too large: %d bytes (max %d)", len(jpeg), maxFrameBytes)
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(jpeg)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(jpeg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readHands reads one reply line. Hands beyond maxHands are dropped when
// maxHands is positive.
func readHands(r *bufio.Reader, maxHands int) ([]HandLandmarks, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var reply serviceReply
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrFrameRejected, reply.Error)
	}

	hands := reply.Hands
	if maxHands > 0 && len(hands) > maxHands {
		hands = hands[:maxHands]
	}
	result := make([]HandLandmarks, len(hands))
	for i, h := range hands {
		result[i] = h.landmarks()
	}
	return result, nil
}

// serviceScript finds the service script, honoring ScriptEnv.
func serviceScript() string {
	if p := os.Getenv(ScriptEnv); p != "" {
		return locate(p)
	}
	return locate(installCandidates(filepath.Join("scripts", scriptName))...)
}

// servicePython prefers PythonEnv, then a virtual environment, then
// python3 from PATH.
func servicePython() string {
	if p := os.Getenv(PythonEnv); p != "" {
		return p
	}
	venv := filepath.Join("venv", "bin", "python")
	candidates := append(installCandidates(venv), filepath.Join("..", "..", venv))
	if p := locate(candidates...); p != "" {
		return p
	}
	return "python3"
}

// installCandidates lists rel under the working directory, its parent,
// the executable's directory and ~/.fingercursor.
func installCandidates(rel string) []string {
	candidates := []string{rel, filepath.Join("..", rel)}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".fingercursor", rel))
	}
	return candidates
}

// locate returns the first candidate that exists, made absolute when
// possible, or "".
func locate(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
