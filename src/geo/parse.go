package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseError is returned for coordinate text that fits none of the accepted forms.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse coordinates %q: %s", e.Text, e.Reason)
}

// Parse reads a world coordinate from user or clipboard text. Accepted forms,
// in order of precedence:
//
//	(x, y)                parenthesized pair
//	x,y                   plain pair
//	123,456.78,90,12.34   grouped thousands, read as x=123.456 y=90.12
//
// The grouped form comes from clients that print a thousands separator which
// collides with the pair separator; the fractional digits after the second
// dot are dropped.
func Parse(text string) (World, error) {
	compact := stripSpace(text)
	if compact == "" {
		return World{}, &ParseError{Text: text, Reason: "empty input"}
	}

	if strings.HasPrefix(compact, "(") || strings.HasSuffix(compact, ")") {
		if !strings.HasPrefix(compact, "(") || !strings.HasSuffix(compact, ")") {
			return World{}, &ParseError{Text: text, Reason: "unbalanced parentheses"}
		}
		tokens := strings.Split(compact[1:len(compact)-1], ",")
		if len(tokens) != 2 {
			return World{}, &ParseError{Text: text, Reason: fmt.Sprintf("expected 2 values inside parentheses, got %d", len(tokens))}
		}
		return parsePair(text, tokens[0], tokens[1])
	}

	tokens := strings.Split(compact, ",")
	switch {
	case len(tokens) == 2:
		return parsePair(text, tokens[0], tokens[1])
	case len(tokens) == 4:
		return parseGrouped(text, tokens)
	default:
		return World{}, &ParseError{Text: text, Reason: fmt.Sprintf("ambiguous token count %d", len(tokens))}
	}
}

// Format renders a coordinate the way positions are shown to the user, with
// the fraction truncated toward zero.
func Format(w World) string {
	return formatInt(w.X) + "," + formatInt(w.Y)
}

func formatInt(v float64) string {
	t := math.Trunc(v)
	if t == 0 {
		t = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func parsePair(text, xs, ys string) (World, error) {
	x, err := parseNumber(text, xs)
	if err != nil {
		return World{}, err
	}
	y, err := parseNumber(text, ys)
	if err != nil {
		return World{}, err
	}
	return World{X: x, Y: y}, nil
}

func parseGrouped(text string, tokens []string) (World, error) {
	x, err := parseNumber(text, tokens[0]+"."+integerPart(tokens[1]))
	if err != nil {
		return World{}, err
	}
	y, err := parseNumber(text, tokens[2]+"."+integerPart(tokens[3]))
	if err != nil {
		return World{}, err
	}
	return World{X: x, Y: y}, nil
}

func integerPart(tok string) string {
	if i := strings.IndexByte(tok, '.'); i >= 0 {
		return tok[:i]
	}
	return tok
}

func parseNumber(text, tok string) (float64, error) {
	if tok == "" {
		return 0, &ParseError{Text: text, Reason: "missing value"}
	}
	digits := strings.TrimLeft(tok, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, &ParseError{Text: text, Reason: fmt.Sprintf("%q is not a decimal number", tok)}
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{Text: text, Reason: fmt.Sprintf("%q is not a number", tok)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Text: text, Reason: fmt.Sprintf("%q is not a finite number", tok)}
	}
	return v, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
