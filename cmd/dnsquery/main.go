// Command dnsquery sends a single DNS query over UDP and prints the
// decoded response. It exists for manual testing against a running
// dnsauthd instance (or any authoritative server).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jthorne/dnsauthd/internal/dns"
)

func main() {
	var (
		server   = flag.String("server", "127.0.0.1:1053", "DNS server HOST:PORT")
		name     = flag.String("name", "example.com", "Query name")
		qtype    = flag.String("qtype", "A", "Query type (A, AAAA, NS, CNAME, MX, TXT, SOA, ...)")
		timeout  = flag.Duration("timeout", 2*time.Second, "Timeout")
		recvSize = flag.Int("recv-size", 4096, "UDP receive buffer size")
		quiet    = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	t, ok := dns.RecordTypeByName(strings.ToUpper(*qtype))
	if !ok {
		fmt.Fprintf(os.Stderr, "dnsquery: unknown query type %q\n", *qtype)
		os.Exit(2)
	}

	respBytes, err := queryUDP(*server, *name, t, *timeout, *recvSize)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	resp, err := dns.DecodeMessage(respBytes)
	if err != nil {
		fmt.Printf("received %d bytes (unparseable: %v)\n", len(respBytes), err)
		return
	}

	fmt.Printf("id=%d rcode=%d answers=%d authorities=%d additionals=%d tc=%v\n",
		resp.ID,
		resp.RCode(),
		len(resp.Answers),
		len(resp.Authorities),
		len(resp.Additionals),
		resp.TC,
	)

	printSection("ANSWER", resp.Answers)
	printSection("AUTHORITY", resp.Authorities)
	printSection("ADDITIONAL", resp.Additionals)
}

func printSection(label string, rrs []dns.Record) {
	if len(rrs) == 0 {
		return
	}
	rows := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		rows = append(rows, formatRR(rr))
	}
	sort.Strings(rows)
	fmt.Printf(";; %s\n", label)
	for _, row := range rows {
		fmt.Println(row)
	}
}

func queryUDP(server, name string, qtype dns.RecordType, timeout time.Duration, recvSize int) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, err
	}
	c, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	reqBytes, err := buildQuery(name, qtype)
	if err != nil {
		return nil, err
	}
	_ = c.SetDeadline(time.Now().Add(timeout))
	if _, err := c.Write(reqBytes); err != nil {
		return nil, err
	}
	buf := make([]byte, recvSize)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func buildQuery(name string, qtype dns.RecordType) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name required")
	}
	n, err := dns.ParseName(name, dns.Root)
	if err != nil {
		return nil, err
	}
	msg := &dns.Message{
		ID:        uint16(time.Now().UnixNano()),
		Opcode:    dns.OpcodeQuery,
		RD:        true,
		Questions: []dns.Question{{Name: n, Type: qtype, Class: dns.ClassIN}},
	}
	return msg.Marshal()
}

func formatRR(rr dns.Record) string {
	h := rr.Header()
	return fmt.Sprintf("%-24s %6d IN %-8s %s", h.Name.String(), h.TTL, h.Type.String(), rr.TextRData())
}
