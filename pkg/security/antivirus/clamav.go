package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects larger INSTREAM chunks by default
const chunkSize = 1 << 20

// ClamAVScanner talks to clamd over TCP ("host:3310") or a unix socket path.
type ClamAVScanner struct {
	network string
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &ClamAVScanner{network: network, address: address, timeout: timeout}
}

func (c *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("antivirus: connect clamd: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping checks that clamd answers PONG.
func (c *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("antivirus: ping: %w", err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return fmt.Errorf("antivirus: unexpected ping reply %q", reply)
	}
	return nil
}

// Scan streams data with the INSTREAM command.
func (c *ClamAVScanner) Scan(ctx context.Context, data []byte) (Result, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return Result{}, fmt.Errorf("antivirus: send command: %w", err)
	}
	var size [4]byte
	for len(data) > 0 {
		n := min(len(data), chunkSize)
		binary.BigEndian.PutUint32(size[:], uint32(n))
		if _, err := w.Write(size[:]); err != nil {
			return Result{}, fmt.Errorf("antivirus: send chunk: %w", err)
		}
		if _, err := w.Write(data[:n]); err != nil {
			return Result{}, fmt.Errorf("antivirus: send chunk: %w", err)
		}
		data = data[n:]
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return Result{}, fmt.Errorf("antivirus: end stream: %w", err)
	}
	if err := w.Flush(); err != nil {
		return Result{}, fmt.Errorf("antivirus: send: %w", err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return Result{}, err
	}
	return parseReply(reply)
}

func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", fmt.Errorf("antivirus: read reply: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and
// "<message> ERROR".
func parseReply(reply string) (Result, error) {
	body := reply
	if _, after, ok := strings.Cut(reply, ":"); ok {
		body = strings.TrimSpace(after)
	}
	switch {
	case body == "OK":
		return Result{}, nil
	case strings.HasSuffix(body, " FOUND"):
		return Result{Infected: true, Threat: strings.TrimSuffix(body, " FOUND")}, nil
	case strings.HasSuffix(body, " ERROR"):
		return Result{}, fmt.Errorf("antivirus: clamd error: %s", strings.TrimSuffix(body, " ERROR"))
	}
	return Result{}, fmt.Errorf("antivirus: unexpected reply %q", reply)
}
