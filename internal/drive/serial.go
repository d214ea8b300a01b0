package drive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/monitoring"
)

var ErrWriteFailed = errors.New("failed to write to serial port")

// message is one newline-delimited JSON frame exchanged with the bridge.
// Outbound frames are "drive" and "reset_pose"; inbound frames are "pose".
type message struct {
	Type    string   `json:"type"`
	VX      *float64 `json:"vx,omitempty"`
	VY      *float64 `json:"vy,omitempty"`
	Omega   *float64 `json:"omega,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
}

// Serial drives a robot through a line-oriented bridge on a serial port.
// The bridge streams pose frames which Monitor consumes.
type Serial struct {
	port io.ReadWriteCloser

	writeMu sync.Mutex

	poseMu  sync.Mutex
	pose    geometry.Pose2d
	updates int
}

// OpenSerial opens the serial port at path.
func OpenSerial(path string, opts PortOptions) (*Serial, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return NewSerial(port), nil
}

// NewSerial wraps an already open port.
func NewSerial(port io.ReadWriteCloser) *Serial {
	return &Serial{port: port}
}

func (s *Serial) send(m message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	n, err := s.port.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return ErrWriteFailed
	}
	return nil
}

func (s *Serial) Drive(speeds geometry.ChassisSpeeds) error {
	return s.send(message{Type: "drive", VX: &speeds.VX, VY: &speeds.VY, Omega: &speeds.Omega})
}

// ResetPose tells the bridge to reset its odometry and assumes the reset
// took effect until the next pose frame arrives.
func (s *Serial) ResetPose(pose geometry.Pose2d) error {
	x, y, heading := pose.X(), pose.Y(), pose.Rotation.Radians
	if err := s.send(message{Type: "reset_pose", X: &x, Y: &y, Heading: &heading}); err != nil {
		return err
	}
	s.setPose(pose)
	return nil
}

func (s *Serial) Pose() geometry.Pose2d {
	s.poseMu.Lock()
	defer s.poseMu.Unlock()
	return s.pose
}

// PoseUpdates returns how many pose frames have been accepted.
func (s *Serial) PoseUpdates() int {
	s.poseMu.Lock()
	defer s.poseMu.Unlock()
	return s.updates
}

func (s *Serial) setPose(p geometry.Pose2d) {
	s.poseMu.Lock()
	s.pose = p
	s.updates++
	s.poseMu.Unlock()
}

// handleLine applies one inbound frame. Unknown frame types are ignored.
func (s *Serial) handleLine(line string) error {
	var m message
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	if m.Type != "pose" {
		return nil
	}
	if m.X == nil || m.Y == nil || m.Heading == nil {
		return fmt.Errorf("pose frame missing x, y or heading")
	}
	s.setPose(geometry.NewPose2d(*m.X, *m.Y, *m.Heading))
	return nil
}

// Monitor reads pose frames from the port until ctx is cancelled or the
// port is closed.
func (s *Serial) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(s.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// the blocking scan.Scan runs in its own goroutine so the loop below
	// still notices cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return err
				default:
					return nil
				}
			}
			if line == "" {
				continue
			}
			if err := s.handleLine(line); err != nil {
				monitoring.Logf("drive: ignoring frame %q: %v", line, err)
			}
		}
	}
}

func (s *Serial) Close() error {
	return s.port.Close()
}
