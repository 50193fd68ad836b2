// Command zonecheck parses one or more zone files and reports either
// a parse error (with its source span) or a sorted dump of every
// record the file defines. It exists for validating zone files before
// handing them to dnsauthd.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/zone"
)

func main() {
	dump := flag.Bool("dump", false, "Print every record after a successful parse")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: zonecheck [-dump] zonefile [zonefile ...]")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := checkFile(path, *dump); err != nil {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func checkFile(path string, dump bool) error {
	z, err := zone.LoadFile(path)
	if err != nil {
		var perr *zone.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(os.Stderr, "%s:%s\n", path, perr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		}
		return err
	}

	records := z.Tree.AllRecords()
	fmt.Printf("%s: OK, origin %s, %d record(s)\n", path, z.Origin.String(), len(records))

	if !dump {
		return nil
	}

	rows := make([]string, 0, len(records))
	for _, rr := range records {
		rows = append(rows, formatRR(rr))
	}
	sort.Strings(rows)
	for _, row := range rows {
		fmt.Println(row)
	}
	return nil
}

func formatRR(rr dns.Record) string {
	h := rr.Header()
	return fmt.Sprintf("%-24s %6d IN %-8s %s", h.Name.String(), h.TTL, h.Type.String(), rr.TextRData())
}
