package zone

import (
	"strconv"
	"strings"

	"github.com/jthorne/dnsauthd/internal/dns"
)

// entryToken is one token of a fully-read entry (a directive line or a
// record line, continuation parentheses already resolved away), with
// the span where it starts.
type entryToken struct {
	text string
	span Span
}

// parser turns a token stream into Records, tracking $ORIGIN/$TTL/class
// and owner-name inheritance across lines.
type parser struct {
	lex *lexer

	origin     dns.Name
	haveOrigin bool
	defaultTTL uint32
	lastOwner  dns.Name
	haveOwner  bool

	tree *Tree
}

func newParser(src string) *parser {
	return &parser{lex: newLexer(src), defaultTTL: 3600, tree: NewTree()}
}

// parse consumes the entire source, returning the populated tree and
// the resolved origin, or the first ParseError encountered.
func (p *parser) parse() (*Tree, dns.Name, error) {
	for {
		entry, leadingWS, span, err := p.readEntry()
		if err != nil {
			return nil, nil, err
		}
		if entry == nil {
			return p.tree, p.origin, nil
		}
		if strings.HasPrefix(entry[0].text, "$") {
			if err := p.handleDirective(entry); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err := p.handleRecord(entry, leadingWS, span); err != nil {
			return nil, nil, err
		}
	}
}

// readEntry reads tokens up to (and consuming) the next unparenthesized
// newline or EOF, discarding blank lines. It returns nil, _, _, nil at
// EOF. leadingWS reports whether the entry's very first token was
// whitespace (meaning the owner name is inherited).
func (p *parser) readEntry() (entry []entryToken, leadingWS bool, span Span, err error) {
	depth := 0
	sawAny := false
	first := true

	for {
		tok, lexErr := p.lex.next()
		if lexErr != nil {
			return nil, false, Span{}, lexErr
		}
		switch tok.kind {
		case tokEOF:
			if depth > 0 {
				return nil, false, Span{}, &ParseError{Span: tok.span, Kind: ErrUnmatchedParen, Msg: "unclosed parenthesis at end of file"}
			}
			if !sawAny {
				return nil, false, Span{}, nil
			}
			return entry, leadingWS, span, nil
		case tokNewline:
			if depth > 0 {
				continue
			}
			if !sawAny {
				// blank (or whitespace/comment-only) line: start over
				leadingWS = false
				first = true
				continue
			}
			return entry, leadingWS, span, nil
		case tokWS:
			if first {
				leadingWS = true
			}
			first = false
			continue
		case tokLParen:
			depth++
			first = false
			continue
		case tokRParen:
			depth--
			if depth < 0 {
				return nil, false, Span{}, &ParseError{Span: tok.span, Kind: ErrUnmatchedParen, Msg: "unmatched closing parenthesis"}
			}
			first = false
			continue
		case tokBare, tokQuoted:
			if !sawAny {
				span = tok.span
			}
			sawAny = true
			first = false
			entry = append(entry, entryToken{text: tok.text, span: tok.span})
		}
	}
}

func (p *parser) handleDirective(entry []entryToken) error {
	name := strings.ToUpper(entry[0].text)
	switch name {
	case "$ORIGIN":
		if len(entry) != 2 {
			return &ParseError{Span: entry[0].span, Kind: ErrIncompleteEntry, Msg: "$ORIGIN requires exactly one name"}
		}
		origin, err := dns.ParseName(entry[1].text, p.origin)
		if err != nil {
			return &ParseError{Span: entry[1].span, Kind: ErrInvalidName, Msg: err.Error()}
		}
		p.origin = origin
		p.haveOrigin = true
		return nil
	case "$TTL":
		if len(entry) != 2 {
			return &ParseError{Span: entry[0].span, Kind: ErrIncompleteEntry, Msg: "$TTL requires exactly one value"}
		}
		ttl, err := parseTTL(entry[1].text)
		if err != nil {
			return &ParseError{Span: entry[1].span, Kind: ErrBadEntry, Msg: err.Error()}
		}
		p.defaultTTL = ttl
		return nil
	default:
		return &ParseError{Span: entry[0].span, Kind: ErrUnknownControl, Msg: "unrecognized control directive " + entry[0].text}
	}
}

func (p *parser) handleRecord(entry []entryToken, leadingWS bool, span Span) error {
	if !p.haveOrigin {
		return &ParseError{Span: span, Kind: ErrBadEntry, Msg: "record before $ORIGIN is set"}
	}

	idx := 0
	var owner dns.Name
	if leadingWS {
		if !p.haveOwner {
			return &ParseError{Span: span, Kind: ErrIncompleteEntry, Msg: "owner name omitted on first record"}
		}
		owner = p.lastOwner
	} else {
		if len(entry) == 0 {
			return &ParseError{Span: span, Kind: ErrIncompleteEntry, Msg: "empty record line"}
		}
		n, err := dns.ParseName(entry[0].text, p.origin)
		if err != nil {
			return &ParseError{Span: entry[0].span, Kind: ErrInvalidName, Msg: err.Error()}
		}
		owner = n
		idx = 1
	}

	ttl := p.defaultTTL
	class := dns.ClassIN
	var haveTTL, haveClass bool

	for idx < len(entry) {
		tok := entry[idx].text
		if !haveTTL && looksLikeTTL(tok) {
			v, err := parseTTL(tok)
			if err != nil {
				return &ParseError{Span: entry[idx].span, Kind: ErrBadEntry, Msg: err.Error()}
			}
			ttl = v
			haveTTL = true
			idx++
			continue
		}
		if !haveClass && looksLikeClass(tok) {
			class = dns.ClassIN
			haveClass = true
			idx++
			continue
		}
		break
	}

	if idx >= len(entry) {
		return &ParseError{Span: span, Kind: ErrIncompleteEntry, Msg: "missing record type"}
	}
	typeName := strings.ToUpper(entry[idx].text)
	typeSpan := entry[idx].span
	idx++

	rrType, known := dns.RecordTypeByName(typeName)
	if !known {
		var ok bool
		rrType, ok = parseGenericTypeMnemonic(typeName)
		if !ok {
			return &ParseError{Span: typeSpan, Kind: ErrBadEntry, Msg: "unknown record type " + typeName}
		}
	}

	fields := make([]string, 0, len(entry)-idx)
	for _, t := range entry[idx:] {
		fields = append(fields, t.text)
	}

	hdr := dns.RRHeader{Name: owner, Type: rrType, Class: class, TTL: ttl}

	var rr dns.Record
	if len(fields) >= 1 && fields[0] == "\\#" {
		if len(fields) < 2 {
			return &ParseError{Span: typeSpan, Kind: ErrBadEntry, Msg: "\\# unknown-type rdata requires a length field"}
		}
		r, err := dns.DecodeOpaqueZoneRData(hdr, fields[1], strings.Join(fields[2:], ""))
		if err != nil {
			return &ParseError{Span: typeSpan, Kind: ErrBadEntry, Msg: err.Error()}
		}
		rr = r
	} else {
		r, handled, err := dns.DecodeZoneRData(hdr, rrType, fields, p.origin)
		if err != nil {
			return &ParseError{Span: typeSpan, Kind: ErrBadEntry, Msg: err.Error()}
		}
		if !handled {
			return &ParseError{Span: typeSpan, Kind: ErrBadEntry, Msg: "unknown type " + typeName + " requires \\# <len> <hex> form"}
		}
		rr = r
	}

	p.tree.Insert(rr)
	p.lastOwner = owner
	p.haveOwner = true
	return nil
}

// looksLikeTTL reports whether tok is a bare TTL value: digits
// optionally followed by a w/d/h/m/s unit, possibly repeated.
func looksLikeTTL(tok string) bool {
	if tok == "" {
		return false
	}
	sawDigit := false
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case strings.ContainsRune("wdhmsWDHMS", rune(c)):
		default:
			return false
		}
	}
	return sawDigit
}

func looksLikeClass(tok string) bool { return strings.EqualFold(tok, "IN") }

// parseGenericTypeMnemonic parses the RFC 3597 "TYPEnnn" fallback
// syntax for record types with no registered mnemonic.
func parseGenericTypeMnemonic(tok string) (dns.RecordType, bool) {
	if !strings.HasPrefix(tok, "TYPE") || len(tok) <= 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(tok[4:], 10, 16)
	if err != nil {
		return 0, false
	}
	return dns.RecordType(n), true
}

// parseTTL parses a zone-file TTL: either a bare integer (seconds) or
// a sequence of number+unit pairs (RFC 2308-style "1h30m").
func parseTTL(tok string) (uint32, error) {
	if tok == "" {
		return 0, &ParseErrValue{"empty TTL value"}
	}
	var total uint64
	num := ""
	flush := func(unit byte) error {
		if num == "" {
			return nil
		}
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return &ParseErrValue{"TTL must be an integer, optionally with w/d/h/m/s units"}
		}
		num = ""
		var mul uint64
		switch unit {
		case 's', 0:
			mul = 1
		case 'm':
			mul = 60
		case 'h':
			mul = 3600
		case 'd':
			mul = 86400
		case 'w':
			mul = 604800
		default:
			return &ParseErrValue{"unknown TTL unit " + string(unit)}
		}
		total += n * mul
		return nil
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c >= '0' && c <= '9' {
			num += string(c)
			continue
		}
		if num == "" {
			return 0, &ParseErrValue{"TTL must be an integer, optionally with w/d/h/m/s units"}
		}
		if err := flush(lower(c)); err != nil {
			return 0, err
		}
	}
	if err := flush(0); err != nil {
		return 0, err
	}
	if total > uint64(^uint32(0)) {
		return 0, &ParseErrValue{"TTL too large"}
	}
	return uint32(total), nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ParseErrValue is a plain validation-message error, wrapped into a
// ParseError (with span) by its caller.
type ParseErrValue struct{ msg string }

func (e *ParseErrValue) Error() string { return e.msg }
