package transport

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
	"github.com/dnsscience/authdnsd/internal/resolver"
	"github.com/dnsscience/authdnsd/internal/worker"
	"github.com/dnsscience/authdnsd/internal/zone"
)

func echoQuery(t *testing.T, name string, tcp bool) []byte {
	t.Helper()
	q := &dnsmsg.Message{
		Header:   dnsmsg.Header{ID: 0xabcd, RD: true},
		Question: dnsmsg.Question{Name: dnsmsg.NameFromString(name), Type: dnsmsg.RTypeA, Class: dnsmsg.ClassIN},
	}
	raw, err := dnsmsg.Encode(q, tcp, dnsmsg.NewCompressionDict())
	require.NoError(t, err)
	return raw
}

func TestUDPServerAnswersQuery(t *testing.T) {
	pool := worker.NewPool(worker.Config{Workers: 2, QueueSize: 10})
	defer pool.Close()

	asm := resolver.New(resolver.Config{Mode: resolver.ModeZone, Zone: zone.DefaultRecords()})
	srv := NewUDPServer(UDPServerConfig{Addr: "127.0.0.1:0", Handler: asm.Handle, Pool: pool})
	require.NoError(t, srv.Start())
	defer srv.Stop()

	client, err := net.DialUDP("udp", nil, srv.conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write(echoQuery(t, "henryn.xyz", false))
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, err := client.Read(buf)
	require.NoError(t, err)

	resp, err := dnsmsg.Parse(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, uint16(0xabcd), resp.Header.ID)
	assert.Equal(t, dnsmsg.RcodeNoError, resp.Header.Rcode)
	require.Len(t, resp.Answer, 1)
}

func TestTCPServerAnswersQuery(t *testing.T) {
	pool := worker.NewPool(worker.Config{Workers: 2, QueueSize: 10})
	defer pool.Close()

	asm := resolver.New(resolver.Config{Mode: resolver.ModeZone, Zone: zone.DefaultRecords()})
	cfg := DefaultTCPServerConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Handler = asm.Handle
	cfg.Pool = pool
	srv := NewTCPServer(cfg)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(echoQuery(t, "henryn.xyz", true))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var lenBuf [2]byte
	_, err = conn.Read(lenBuf[:])
	require.NoError(t, err)
	msgLen := binary.BigEndian.Uint16(lenBuf[:])

	buf := make([]byte, msgLen)
	n := 0
	for n < int(msgLen) {
		k, err := conn.Read(buf[n:])
		require.NoError(t, err)
		n += k
	}

	resp, err := dnsmsg.Parse(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeNoError, resp.Header.Rcode)
	require.Len(t, resp.Answer, 1)
}
