package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the pose service script cannot be located.
var ErrServiceNotFound = fmt.Errorf("pose_service.py not found")

// PoseServiceDetector implements Detector using a Python pose estimation subprocess.
//
// Frames are written to the service stdin as a 4-byte big-endian length followed
// by a JPEG image. The service answers each frame with a single JSON line.
type PoseServiceDetector struct {
	config     Config
	scriptPath string
	python     string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer
}

// NewPoseServiceDetector creates a new detector backed by the pose service.
// The Python process is started eagerly so that a broken installation is
// reported before the control loop starts.
func NewPoseServiceDetector(config Config) (*PoseServiceDetector, error) {
	scriptPath := findPoseServiceScript()
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}

	d := &PoseServiceDetector{
		config:     config,
		scriptPath: scriptPath,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureStarted(); err != nil {
		return nil, err
	}
	return d, nil
}

// Detect encodes the frame, sends it to the service and parses the bodies.
func (d *PoseServiceDetector) Detect(frame *gocv.Mat) ([]Body, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return nil, nil
	}

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	// a failed exchange leaves the pipes out of step; the next frame respawns
	if _, err := d.stdin.Write(length); err != nil {
		d.abort()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.abort()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.abort()
		return nil, fmt.Errorf("read response: %w", err)
	}

	bodies, err := parseResponse([]byte(line))
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return leftmost(bodies, d.config.MaxBodies, d.config.MinConfidence), nil
}

// Close shuts down the Python process.
func (d *PoseServiceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *PoseServiceDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := d.python
	if pythonPath == "" {
		pythonPath = findVenvPython()
	}
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.scriptPath,
		"--max-bodies", strconv.Itoa(d.config.MaxBodies))

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *PoseServiceDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

// abort kills a service that broke the protocol so ensureStarted starts a new one.
func (d *PoseServiceDetector) abort() {
	if !d.started {
		return
	}
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	if err := d.shutdown(); err != nil {
		log.Printf("Pose service stopped: %v", err)
	}
}

func (d *PoseServiceDetector) resetIdleTimer() {
	if d.config.IdleTimeoutSec <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(time.Duration(d.config.IdleTimeoutSec)*time.Second, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findPoseServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/pose_service.py",
		"../scripts/pose_service.py",
		filepath.Join(execDir, "scripts/pose_service.py"),
		filepath.Join(os.Getenv("HOME"), ".volante/scripts/pose_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".volante/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonBody represents one detected person in the service response.
type jsonBody struct {
	Keypoints []jsonKeypoint `json:"keypoints"`
}

// jsonKeypoint carries either a joint name or a COCO index.
type jsonKeypoint struct {
	Name  string  `json:"name"`
	Index *int    `json:"index,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// parseResponse decodes a service response line into bodies.
// Keypoints that cannot be named are skipped.
func parseResponse(line []byte) ([]Body, error) {
	var response struct {
		Bodies []jsonBody `json:"bodies"`
		Error  string     `json:"error,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("pose service: %s", response.Error)
	}

	bodies := make([]Body, 0, len(response.Bodies))
	for _, jb := range response.Bodies {
		bodies = append(bodies, jb.toBody())
	}
	return bodies, nil
}

// leftmost keeps the n bodies furthest left, in their original order.
// Bodies without a usable joint are dropped first. n <= 0 keeps all.
func leftmost(bodies []Body, n int, minConfidence float64) []Body {
	if n <= 0 || len(bodies) <= n {
		return bodies
	}

	type placed struct {
		index int
		x     float64
	}
	order := make([]placed, 0, len(bodies))
	for i, b := range bodies {
		x, ok := b.CenterX(minConfidence)
		if !ok {
			continue
		}
		order = append(order, placed{index: i, x: x})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].x < order[j].x
	})
	if len(order) > n {
		order = order[:n]
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].index < order[j].index
	})

	kept := make([]Body, len(order))
	for i, p := range order {
		kept[i] = bodies[p.index]
	}
	return kept
}

func (jb jsonBody) toBody() Body {
	body := make(Body, len(jb.Keypoints))
	for _, kp := range jb.Keypoints {
		name := JointName(kp.Name)
		if name == "" && kp.Index != nil {
			n, ok := JointByIndex(*kp.Index)
			if !ok {
				continue
			}
			name = n
		}
		if name == "" {
			continue
		}
		body[name] = Joint{
			Position:   Point2D{X: kp.X, Y: kp.Y},
			Confidence: kp.Score,
		}
	}
	return body
}
