package server

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/resolver"
	"github.com/jthorne/dnsauthd/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUDPTestServer(t *testing.T, maxUDP uint16) (*UDPServer, *net.UDPConn) {
	t.Helper()
	z, err := zone.ParseText(handlerTestZone)
	require.NoError(t, err)
	res := resolver.New(z.Tree, edns.Config{}, maxUDP)
	handler := &QueryHandler{Resolver: res, Stats: NewDNSStats()}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)

	srv := &UDPServer{Handler: handler, MaxUDPPayload: maxUDP, WorkersPerSocket: 2}
	return srv, conn
}

func TestUDPServer_RoundTrip(t *testing.T) {
	srv, conn := newUDPTestServer(t, 4096)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.RunOnConn(ctx, conn)
	defer srv.Stop(time.Second)

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write(encodeQuery(t, "www.example.com.", dns.TypeA))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)

	resp, err := dns.DecodeMessage(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, dns.RCodeNoError, resp.RCodeLow)
	require.Len(t, resp.Answers, 1)
}

func TestClientUDPLimit_NoEDNSUsesClassicDefault(t *testing.T) {
	resp := &dns.Message{}
	assert.Equal(t, dns.DefaultUDPPayloadSize, clientUDPLimit(resp, 4096))
}

func TestClientUDPLimit_ClampedToServerMax(t *testing.T) {
	resp := &dns.Message{EDNS: &dns.EDNSState{UDPSize: 8192}}
	assert.Equal(t, uint16(4096), clientUDPLimit(resp, 4096))
}

func TestClientUDPLimit_ClampedToMinimum(t *testing.T) {
	resp := &dns.Message{EDNS: &dns.EDNSState{UDPSize: 16}}
	assert.Equal(t, dns.EDNSMinUDPPayloadSize, clientUDPLimit(resp, 4096))
}

func manyARecords(t *testing.T, count int) string {
	t.Helper()
	text := "$ORIGIN example.com.\n$TTL 3600\n" +
		"@   IN  SOA  ns1.example.com. admin.example.com. 1 3600 900 604800 86400\n" +
		"@   IN  NS   ns1.example.com.\n" +
		"ns1 IN  A    192.0.2.53\n"
	for i := range count {
		octet := 2 + i
		text += "www IN  A    192.0." + strconv.Itoa(octet/250) + "." + strconv.Itoa(octet%250) + "\n"
	}
	return text
}

func TestUDPServer_TruncatesOversizedResponse(t *testing.T) {
	z, err := zone.ParseText(manyARecords(t, 60))
	require.NoError(t, err)
	res := resolver.New(z.Tree, edns.Config{}, dns.DefaultUDPPayloadSize)
	handler := &QueryHandler{Resolver: res, Stats: NewDNSStats()}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)

	srv := &UDPServer{Handler: handler, MaxUDPPayload: dns.DefaultUDPPayloadSize, WorkersPerSocket: 2}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.RunOnConn(ctx, conn)
	defer srv.Stop(time.Second)

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write(encodeQuery(t, "www.example.com.", dns.TypeA))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)

	resp, err := dns.DecodeMessage(buf[:n])
	require.NoError(t, err)
	assert.True(t, resp.TC)
	assert.Less(t, n, 512)
}
