package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// SignatureHeader is the header carrying a commit signature. It is treated
// as an unknown header by the codec (preserved verbatim); only signing and
// verification interpret it.
const SignatureHeader = "gpgsig"

// MarshalCommit serializes a commit:
//
//	tree <id>
//	parent <id>        (zero or more)
//	author <name> <email> <epoch> <tz>
//	committer <name> <email> <epoch> <tz>
//	<extra header lines, verbatim>
//
//	<message>
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(c.Committer))
	for _, line := range c.Extra {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses commit bytes. The header order is strict: tree,
// then parents, then author, then committer. Anything after the committer
// line and before the blank separator is preserved verbatim in Extra
// (including continuation lines, which begin with a space) so that
// re-serialization reproduces the input byte-for-byte.
func UnmarshalCommit(data []byte) (*Commit, error) {
	sep := bytes.Index(data, []byte("\n\n"))
	if sep < 0 {
		return nil, fmt.Errorf("%w: missing header/message separator", ErrMalformedCommit)
	}
	header := string(data[:sep])
	message := string(data[sep+2:])

	lines := strings.Split(header, "\n")
	c := &Commit{Message: message}

	i := 0
	next := func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		l := lines[i]
		i++
		return l, true
	}

	line, ok := next()
	if !ok || !strings.HasPrefix(line, "tree ") {
		return nil, fmt.Errorf("%w: first header must be tree", ErrMalformedCommit)
	}
	tree, err := ParseHash(strings.TrimPrefix(line, "tree "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommit, err)
	}
	c.Tree = tree

	for {
		line, ok = next()
		if !ok {
			return nil, fmt.Errorf("%w: missing author header", ErrMalformedCommit)
		}
		if !strings.HasPrefix(line, "parent ") {
			break
		}
		p, err := ParseHash(strings.TrimPrefix(line, "parent "))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommit, err)
		}
		c.Parents = append(c.Parents, p)
	}

	if !strings.HasPrefix(line, "author ") {
		return nil, fmt.Errorf("%w: expected author header, found %q", ErrMalformedCommit, line)
	}
	if c.Author, err = parseSignature(strings.TrimPrefix(line, "author ")); err != nil {
		return nil, err
	}

	line, ok = next()
	if !ok || !strings.HasPrefix(line, "committer ") {
		return nil, fmt.Errorf("%w: expected committer header", ErrMalformedCommit)
	}
	if c.Committer, err = parseSignature(strings.TrimPrefix(line, "committer ")); err != nil {
		return nil, err
	}

	for {
		line, ok = next()
		if !ok {
			break
		}
		c.Extra = append(c.Extra, line)
	}

	return c, nil
}

// SigningPayload returns the bytes a commit signature covers: the commit
// serialized without any existing signature header (and its continuation
// lines).
func SigningPayload(c *Commit) []byte {
	stripped := *c
	stripped.Extra = nil
	skipping := false
	for _, line := range c.Extra {
		if strings.HasPrefix(line, SignatureHeader+" ") || line == SignatureHeader {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, " ") {
			continue
		}
		skipping = false
		stripped.Extra = append(stripped.Extra, line)
	}
	return MarshalCommit(&stripped)
}

// ExtractSignature returns the signature text stored in the gpgsig header,
// with continuation-line indentation removed, or "" when the commit is
// unsigned.
func ExtractSignature(c *Commit) string {
	var sig []string
	skipping := false
	for _, line := range c.Extra {
		if strings.HasPrefix(line, SignatureHeader+" ") {
			sig = append(sig, strings.TrimPrefix(line, SignatureHeader+" "))
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, " ") {
			sig = append(sig, line[1:])
			continue
		}
		skipping = false
	}
	return strings.Join(sig, "\n")
}

// AttachSignature appends a gpgsig header carrying the signature text,
// folding it into continuation lines.
func AttachSignature(c *Commit, signature string) {
	lines := strings.Split(strings.TrimRight(signature, "\n"), "\n")
	for i, l := range lines {
		if i == 0 {
			c.Extra = append(c.Extra, SignatureHeader+" "+l)
		} else {
			c.Extra = append(c.Extra, " "+l)
		}
	}
}

func formatSignature(s Signature) string {
	tz := s.TZ
	if tz == "" {
		tz = "+0000"
	}
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, tz)
}

// parseSignature splits "Name <email> epoch tz". The name may contain
// spaces, so parsing anchors on the bracketed email.
func parseSignature(s string) (Signature, error) {
	open := strings.LastIndex(s, "<")
	close := strings.LastIndex(s, ">")
	if open < 0 || close < open {
		return Signature{}, fmt.Errorf("%w: malformed identity %q", ErrMalformedCommit, s)
	}

	sig := Signature{
		Name:  strings.TrimSpace(s[:open]),
		Email: s[open+1 : close],
	}

	rest := strings.Fields(s[close+1:])
	if len(rest) != 2 {
		return Signature{}, fmt.Errorf("%w: malformed timestamp in %q", ErrMalformedCommit, s)
	}
	when, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: bad epoch %q: %v", ErrMalformedCommit, rest[0], err)
	}
	sig.When = when
	sig.TZ = rest[1]
	return sig, nil
}
