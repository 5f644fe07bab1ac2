package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	residentHost  = "127.0.0.1"
	pingRequest   = "PING\n"
	pongResponse  = "PONG\n"
	showRequest   = "SHOW\n"
	okResponse    = "OK\n"
	clientTimeout = 3 * time.Second
)

const (
	PortStartEnvVar = "PACK_MANAGER_PORT_START"
	PortEndEnvVar   = "PACK_MANAGER_PORT_END"
	firstPort       = 49650
	lastPort        = 49660
)

// PortRange is the inclusive loopback window scanned for a resident. Acquire
// binds its first port. Bounds outside [1024, 65535] are clamped.
func PortRange() (start, end int) {
	start = envPort(PortStartEnvVar, firstPort)
	end = envPort(PortEndEnvVar, lastPort)
	if end < start {
		start, end = end, start
	}
	return min(max(start, 1024), 65535), min(max(end, 1024), 65535)
}

func envPort(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// ErrAlreadyRunning is returned by Acquire when another instance answers on
// the loopback port. Two residents would both hook the global key.
var ErrAlreadyRunning = errors.New("another pack manager instance is already running")

// Guard holds the loopback port for as long as this process is the resident.
type Guard struct {
	lis   net.Listener
	port  int
	log   *zap.SugaredLogger
	shows chan struct{}

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Acquire binds the first port of the configured range. When the port is
// taken and its owner answers PING, ErrAlreadyRunning is returned.
func Acquire(ctx context.Context, log *zap.SugaredLogger) (*Guard, error) {
	start, _ := PortRange()
	addr := net.JoinHostPort(residentHost, strconv.Itoa(start))

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if ping(addr, clientTimeout) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("singleinstance: bind %s: %w", addr, err)
	}

	g := &Guard{
		lis:   lis,
		port:  start,
		log:   log,
		shows: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	log.Infow("singleinstance: listening", "addr", addr)

	g.wg.Add(1)
	go g.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = g.Close()
		case <-g.done:
		}
	}()
	return g, nil
}

// Port returns the bound port.
func (g *Guard) Port() int { return g.port }

// ShowRequests delivers one value per SHOW request from a second launch.
// Requests that arrive while one is pending are coalesced.
func (g *Guard) ShowRequests() <-chan struct{} { return g.shows }

func (g *Guard) Close() error {
	g.closeOnce.Do(func() {
		close(g.done)
		_ = g.lis.Close()
		g.wg.Wait()
	})
	return nil
}

func (g *Guard) acceptLoop() {
	defer g.wg.Done()
	for {
		c, err := g.lis.Accept()
		if err != nil {
			return
		}
		g.serve(c)
	}
}

func (g *Guard) serve(c net.Conn) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(clientTimeout))

	line, _ := bufio.NewReader(c).ReadString('\n')
	bw := bufio.NewWriter(c)
	switch line {
	case pingRequest:
		g.log.Debugw("singleinstance: PING -> PONG", "remote", remote)
		_, _ = bw.WriteString(pongResponse)
	case showRequest:
		g.log.Infow("singleinstance: show requested by second launch", "remote", remote)
		select {
		case g.shows <- struct{}{}:
		default:
		}
		_, _ = bw.WriteString(okResponse)
	default:
		g.log.Warnw("singleinstance: unknown request", "remote", remote, "line", line)
	}
	_ = bw.Flush()
}

// RequestShow asks a running resident to bring its window forward.
func RequestShow(ctx context.Context) error {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return errors.New("singleinstance: no resident found")
	}
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	resp, err := roundTrip(addr, showRequest, timeoutFrom(ctx, clientTimeout))
	if err != nil {
		return err
	}
	if resp != okResponse {
		return fmt.Errorf("singleinstance: unexpected reply %q", resp)
	}
	return nil
}
