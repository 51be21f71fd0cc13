package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
	"github.com/dnsscience/authdnsd/internal/kv"
	"github.com/dnsscience/authdnsd/internal/router"
	"github.com/dnsscience/authdnsd/internal/zone"
)

func encodeQuery(t *testing.T, name string, qtype dnsmsg.RType, tcp bool) []byte {
	t.Helper()
	q := &dnsmsg.Message{
		Header:   dnsmsg.Header{ID: 0x1234, RD: true},
		Question: dnsmsg.Question{Name: dnsmsg.NameFromString(name), Type: qtype, Class: dnsmsg.ClassIN},
	}
	raw, err := dnsmsg.Encode(q, tcp, dnsmsg.NewCompressionDict())
	require.NoError(t, err)
	if tcp {
		return raw[2:]
	}
	return raw
}

func TestHandleZoneApexAnswer(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "henryn.xyz", dnsmsg.RTypeA, false)

	out := a.Handle(raw, false)
	require.NotNil(t, out)

	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeNoError, resp.Header.Rcode)
	assert.True(t, resp.Header.QR)
	assert.True(t, resp.Header.AA)
	assert.False(t, resp.Header.RD, "response header must always carry rd=0, regardless of the query's RD bit")
	require.Len(t, resp.Answer, 1)
	assert.Equal(t, dnsmsg.RTypeA, resp.Answer[0].Type)
}

func TestHandleZoneUnmatchedNameReturnsNXDomain(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "nothing-here.example", dnsmsg.RTypeA, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)

	assert.Equal(t, dnsmsg.RcodeNameError, resp.Header.Rcode)
	assert.Empty(t, resp.Answer)
	assert.Empty(t, resp.Authority)
	assert.Empty(t, resp.Additional)
}

func TestHandleUnknownQtypeReturnsNotImplemented(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "henryn.xyz", dnsmsg.RType(999), false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)

	assert.Equal(t, dnsmsg.RcodeNotImplemented, resp.Header.Rcode)
	assert.Empty(t, resp.Answer)
	assert.Empty(t, resp.Authority)
	assert.Empty(t, resp.Additional)
}

func TestHandleKVUnknownQtypeReturnsNotImplemented(t *testing.T) {
	a := New(Config{Mode: ModeKV, KV: kv.NewResolver(kv.NewStore())})
	raw := encodeQuery(t, "foo", dnsmsg.RType(999), false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)

	assert.Equal(t, dnsmsg.RcodeNotImplemented, resp.Header.Rcode)
}

func TestHandleZoneNSDelegationIncludesGlue(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "www1.henryn.xyz", dnsmsg.RTypeA, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)

	assert.Equal(t, dnsmsg.RcodeNoError, resp.Header.Rcode)
	require.Len(t, resp.Authority, 1)
	assert.Equal(t, dnsmsg.RTypeNS, resp.Authority[0].Type)
	require.NotEmpty(t, resp.Additional)
}

func TestHandleZoneTruncatesOversizedUDPResponse(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "acme.www2.henryn.xyz", dnsmsg.RTypeTXT, false)

	out := a.Handle(raw, false)
	require.NotNil(t, out)
	assert.LessOrEqual(t, len(out), 512)

	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)
	assert.True(t, resp.Header.TC)
	assert.Empty(t, resp.Answer)
}

func TestHandleZoneTCPNeverTruncatesOversizedResponse(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	raw := encodeQuery(t, "acme.www2.henryn.xyz", dnsmsg.RTypeTXT, true)

	out := a.Handle(raw, true)
	require.NotNil(t, out)

	resp, err := dnsmsg.Parse(out[2:])
	require.NoError(t, err)
	assert.False(t, resp.Header.TC)
	require.Len(t, resp.Answer, 1)
}

func TestHandleZoneRouterTakesPriorityOverZone(t *testing.T) {
	r := router.New(router.DefaultConfig())
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords(), Router: r})
	raw := encodeQuery(t, "1.2.3.4.ip.henryn.ca", dnsmsg.RTypeA, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)

	assert.Equal(t, dnsmsg.RcodeNoError, resp.Header.Rcode)
	require.Len(t, resp.Answer, 1)
	ip := resp.Answer[0].RData.(dnsmsg.OpaqueRData)
	assert.Equal(t, []byte{1, 2, 3, 4}, []byte(ip))
}

func TestHandleZoneRouterRefusesInvalidOctet(t *testing.T) {
	r := router.New(router.DefaultConfig())
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords(), Router: r})
	raw := encodeQuery(t, "1.2.3.999.ip.henryn.ca", dnsmsg.RTypeA, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeRefused, resp.Header.Rcode)
}

func TestHandleKVGetMissingReturnsNXDomain(t *testing.T) {
	a := New(Config{Mode: ModeKV, KV: kv.NewResolver(kv.NewStore())})
	raw := encodeQuery(t, "missing", dnsmsg.RTypeTXT, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeNameError, resp.Header.Rcode)
}

func TestHandleKVPutThenGet(t *testing.T) {
	store := kv.NewStore()
	a := New(Config{Mode: ModeKV, KV: kv.NewResolver(store)})

	putRaw := encodeQuery(t, "foo.bar", dnsmsg.RTypeTXT, false)
	putOut := a.Handle(putRaw, false)
	putResp, err := dnsmsg.Parse(putOut)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeNoError, putResp.Header.Rcode)
	require.Len(t, putResp.Answer, 1)

	getRaw := encodeQuery(t, "foo", dnsmsg.RTypeTXT, false)
	getOut := a.Handle(getRaw, false)
	getResp, err := dnsmsg.Parse(getOut)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeNoError, getResp.Header.Rcode)
	require.Len(t, getResp.Answer, 1)
	text := getResp.Answer[0].RData.(dnsmsg.TextRData)
	assert.Equal(t, "bar", string(text.Bytes()))
}

func TestHandleKVInvalidLabelCountReturnsServFail(t *testing.T) {
	a := New(Config{Mode: ModeKV, KV: kv.NewResolver(kv.NewStore())})
	raw := encodeQuery(t, "a.b.c", dnsmsg.RTypeTXT, false)

	out := a.Handle(raw, false)
	resp, err := dnsmsg.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, dnsmsg.RcodeServerFailure, resp.Header.Rcode)
}

func TestHandleMalformedQueryDropsSilently(t *testing.T) {
	a := New(Config{Mode: ModeZone, Zone: zone.DefaultRecords()})
	out := a.Handle([]byte{0x01, 0x02}, false)
	assert.Nil(t, out)
}
