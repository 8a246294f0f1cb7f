package detector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the service may sit unused before it is
// stopped. It is restarted lazily on the next Detect call.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector on top of the MediaPipe service
// process described in service.go.
type MediaPipeDetector struct {
	config Config
	python string
	script string

	mu        sync.Mutex
	proc      *serviceProcess
	idleTimer *time.Timer
}

type serviceProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// NewMediaPipeDetector locates the service script and interpreter. The
// process itself is started on the first Detect call.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := serviceScript()
	if script == "" {
		return nil, fmt.Errorf("%w: set %s or install scripts/%s", ErrServiceNotFound, ScriptEnv, scriptName)
	}
	return &MediaPipeDetector{
		config: config,
		python: servicePython(),
		script: script,
	}, nil
}

// Detect encodes frame as JPEG and returns the hands the service finds.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return d.detect(buf.GetBytes())
}

func (d *MediaPipeDetector) detect(jpeg []byte) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.start()
	if err != nil {
		return nil, err
	}

	err = writeFrame(p.stdin, jpeg)
	var hands []HandLandmarks
	if err == nil {
		hands, err = readHands(p.stdout, d.config.MaxHands)
	}
	if err != nil && !errors.Is(err, ErrFrameRejected) {
		// the stream is out of step; the next call starts a fresh process
		d.stop()
		return nil, err
	}

	d.resetIdleTimer()
	return hands, err
}

// Close shuts down the service process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) start() (*serviceProcess, error) {
	if d.proc != nil {
		return d.proc, nil
	}

	cmd := exec.Command(d.python, serviceArgs(d.script, d.config)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	d.proc = &serviceProcess{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}
	return d.proc, nil
}

func (d *MediaPipeDetector) stop() error {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.proc == nil {
		return nil
	}

	p := d.proc
	d.proc = nil
	p.stdin.Close()
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("mediapipe service exit: %w", err)
	}
	return nil
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}
