package antivirus_test

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"go-recruiter-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one connection per accepted client. It replies FOUND
// when the streamed payload contains "EICAR".
func fakeClamd(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveClamd(conn)
		}
	}()
	return ln.Addr().String()
}

func serveClamd(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	cmd, err := r.ReadString(0)
	if err != nil {
		return
	}
	switch strings.TrimRight(cmd, "\x00") {
	case "zPING":
		_, _ = conn.Write([]byte("PONG\x00"))
	case "zINSTREAM":
		var payload []byte
		for {
			var size [4]byte
			if _, err := io.ReadFull(r, size[:]); err != nil {
				return
			}
			n := binary.BigEndian.Uint32(size[:])
			if n == 0 {
				break
			}
			chunk := make([]byte, n)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return
			}
			payload = append(payload, chunk...)
		}
		switch {
		case strings.Contains(string(payload), "EICAR"):
			_, _ = conn.Write([]byte("stream: Eicar-Signature FOUND\x00"))
		case strings.Contains(string(payload), "BROKEN"):
			_, _ = conn.Write([]byte("INSTREAM size limit exceeded. ERROR\x00"))
		default:
			_, _ = conn.Write([]byte("stream: OK\x00"))
		}
	}
}

func TestClamAVScanner(t *testing.T) {
	ctx := context.Background()
	scanner := antivirus.NewClamAVScanner(fakeClamd(t), 5*time.Second)

	t.Run("Should answer ping", func(t *testing.T) {
		assert.NoError(t, scanner.Ping(ctx))
	})

	t.Run("Should report a clean file", func(t *testing.T) {
		res, err := antivirus.Check(ctx, scanner, []byte("%PDF-1.4 plain resume"))
		require.NoError(t, err)
		assert.False(t, res.Infected)
	})

	t.Run("Should report an infected file", func(t *testing.T) {
		res, err := antivirus.Check(ctx, scanner, []byte("X5O!P%@AP EICAR test"))
		assert.ErrorIs(t, err, antivirus.ErrInfected)
		assert.True(t, res.Infected)
		assert.Equal(t, "Eicar-Signature", res.Threat)
	})

	t.Run("Should stream payloads larger than one chunk", func(t *testing.T) {
		data := make([]byte, 3<<20)
		copy(data[len(data)-5:], "EICAR")
		res, err := scanner.Scan(ctx, data)
		require.NoError(t, err)
		assert.True(t, res.Infected)
	})

	t.Run("Should surface clamd errors", func(t *testing.T) {
		_, err := scanner.Scan(ctx, []byte("BROKEN"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "size limit exceeded")
	})
}

func TestClamAVScannerUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	scanner := antivirus.NewClamAVScanner(addr, time.Second)
	_, err = scanner.Scan(context.Background(), []byte("data"))
	assert.Error(t, err)
	assert.Error(t, scanner.Ping(context.Background()))
}
