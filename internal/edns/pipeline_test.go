package edns

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jthorne/dnsauthd/internal/cookie"
	"github.com/jthorne/dnsauthd/internal/dns"
)

func testCfg() Config {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return Config{
		CookieSecret:   cookie.NewSecret(raw),
		CookieStrategy: cookie.StrategyEnforce,
	}
}

func TestRun_CookieFreshClient_UnderEnforce(t *testing.T) {
	cfg := testCfg()
	conn := NewConnState(net.ParseIP("203.0.113.7"))
	query := []dns.EDNSOption{{Code: dns.OptCodeCookie, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}}

	resp, rcode, sc := Run(cfg, conn, 1_700_000_000, query)
	assert.True(t, sc)
	assert.Equal(t, dns.RCodeBadCookie, rcode)
	require.Len(t, resp, 1)
	assert.Equal(t, dns.OptCodeCookie, resp[0].Code)
	assert.Len(t, resp[0].Data, 8+cookie.ServerCookieSize)
}

func TestRun_CookieRoundTrip_SecondQuerySucceeds(t *testing.T) {
	cfg := testCfg()
	conn := NewConnState(net.ParseIP("203.0.113.7"))
	client := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	first, _, sc := Run(cfg, conn, 1_700_000_000, []dns.EDNSOption{{Code: dns.OptCodeCookie, Data: client}})
	require.True(t, sc)
	freshFull := first[0].Data

	resp, rcode, sc2 := Run(cfg, conn, 1_700_000_050, []dns.EDNSOption{{Code: dns.OptCodeCookie, Data: freshFull}})
	assert.False(t, sc2)
	assert.Equal(t, dns.RCode(0), rcode)
	require.Len(t, resp, 2) // cookie + keepalive
}

func TestRun_CookieStrategyOff_Passthrough(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	resp, _, sc := Run(cfg, conn, 0, []dns.EDNSOption{{Code: dns.OptCodeCookie, Data: data}})
	assert.False(t, sc)
	require.Len(t, resp, 2)
	assert.Equal(t, data, resp[0].Data)
}

func TestRun_NSIDReplacesClientValue(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	cfg.IdentityEnabled = true
	cfg.Identity = []byte("server-1")
	conn := NewConnState(net.ParseIP("203.0.113.7"))

	resp, _, _ := Run(cfg, conn, 0, []dns.EDNSOption{{Code: dns.OptCodeNSID, Data: []byte("client-supplied")}})
	require.Len(t, resp, 2) // nsid + keepalive
	assert.Equal(t, []byte("server-1"), resp[0].Data)
}

func TestRun_NSIDOmittedWhenIdentityDisabled(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))

	resp, _, _ := Run(cfg, conn, 0, []dns.EDNSOption{{Code: dns.OptCodeNSID, Data: nil}})
	require.Len(t, resp, 1) // only the always-present keepalive
	assert.Equal(t, dns.OptCodeKeepalive, resp[0].Code)
}

func TestRun_KeepaliveUpdatesConnAndAlwaysEchoes(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))

	resp, _, _ := Run(cfg, conn, 0, []dns.EDNSOption{{Code: dns.OptCodeKeepalive, Data: []byte{0x01, 0x2C}}})
	assert.Equal(t, uint16(0x012C), conn.Keepalive())
	require.Len(t, resp, 1)
	assert.Equal(t, []byte{0x01, 0x2C}, resp[0].Data)
}

func TestRun_KeepaliveEchoedEvenWhenAbsentFromQuery(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))
	conn.SetKeepalive(42)

	resp, _, _ := Run(cfg, conn, 0, nil)
	require.Len(t, resp, 1)
	assert.Equal(t, dns.OptCodeKeepalive, resp[0].Code)
	assert.Equal(t, []byte{0, 42}, resp[0].Data)
}

func TestRun_PaddingEchoedVerbatim(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))
	padding := make([]byte, 50)

	resp, _, _ := Run(cfg, conn, 0, []dns.EDNSOption{{Code: dns.OptCodePadding, Data: padding}})
	require.Len(t, resp, 2)
	assert.Equal(t, padding, resp[0].Data)
}

func TestRun_UnknownOptionPassthrough(t *testing.T) {
	cfg := testCfg()
	cfg.CookieStrategy = cookie.StrategyOff
	conn := NewConnState(net.ParseIP("203.0.113.7"))

	resp, _, _ := Run(cfg, conn, 0, []dns.EDNSOption{{Code: 65001, Data: []byte{0xAB}}})
	require.Len(t, resp, 2)
	assert.Equal(t, uint16(65001), resp[0].Code)
	assert.Equal(t, []byte{0xAB}, resp[0].Data)
}
