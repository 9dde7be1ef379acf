// Package loader reads comma separated key files into a filter and looks
// them up again.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/weiiwang01/bloomset/internal/bloom"
)

const maxLineSize = 16 * 1024 * 1024

// Inserter is implemented by bloom.Locked. InsertAll reports how many keys
// were inserted before the first rejected one.
type Inserter interface {
	InsertAll(keys []bloom.Key) (int, error)
}

// Querier is implemented by bloom.Filter and bloom.Locked.
type Querier interface {
	Query(key bloom.Key) bool
}

// Token is one comma separated field of an input line.
type Token struct {
	Raw string
	Key bloom.Key
}

// Result is the outcome of looking up one token.
type Result struct {
	Token   Token
	Present bool
}

// ParseToken turns s into an integer key if it is a base 10 int32, and a text
// key otherwise.
func ParseToken(s string) Token {
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Token{Raw: s, Key: bloom.IntKey(int32(v))}
	}
	return Token{Raw: s, Key: bloom.TextKey(s)}
}

// Tokenize splits line on commas. Trailing empty fields are dropped, inner
// empty fields become empty text keys and whitespace is kept as part of the key.
func Tokenize(line string) []Token {
	fields := strings.Split(line, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, ParseToken(f))
	}
	return tokens
}

func scanLines(ctx context.Context, r io.Reader, fn func(lineNo int, tokens []Token) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens := Tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if err := fn(lineNo, tokens); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read line %d: %w", lineNo+1, err)
	}
	return nil
}

// Load inserts every key read from r into f and returns the number of keys
// inserted. A rejected key aborts the load.
func Load(ctx context.Context, f Inserter, r io.Reader) (int, error) {
	count := 0
	err := scanLines(ctx, r, func(lineNo int, tokens []Token) error {
		keys := make([]bloom.Key, len(tokens))
		for i, tok := range tokens {
			keys[i] = tok.Key
		}
		n, err := f.InsertAll(keys)
		count += n
		if err != nil {
			return fmt.Errorf("line %d: failed to insert %q: %w", lineNo, tokens[n].Raw, err)
		}
		return nil
	})
	return count, err
}

// Search looks up every key read from r and calls fn with each result in
// input order.
func Search(ctx context.Context, f Querier, r io.Reader, fn func(Result)) error {
	return scanLines(ctx, r, func(_ int, tokens []Token) error {
		for _, tok := range tokens {
			fn(Result{Token: tok, Present: f.Query(tok.Key)})
		}
		return nil
	})
}

// LoadFile is Load over the file at path.
func LoadFile(ctx context.Context, f Inserter, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open key file: %w", err)
	}
	defer file.Close()
	n, err := Load(ctx, f, file)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("key file loaded", "file", path, "keys", n)
	return n, nil
}

// SearchFile is Search over the file at path.
func SearchFile(ctx context.Context, f Querier, path string, fn func(Result)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	defer file.Close()
	if err := Search(ctx, f, file, fn); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("key file searched", "file", path)
	return nil
}

// WriteResult writes res to w in the report format.
func WriteResult(w io.Writer, res Result) error {
	_, err := fmt.Fprintf(w, "Searching result for %s: %t\n", res.Token.Raw, res.Present)
	return err
}
