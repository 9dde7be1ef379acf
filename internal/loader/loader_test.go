package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weiiwang01/bloomset/internal/bloom"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		in     string
		isInt  bool
		intVal int32
	}{
		{in: "1", isInt: true, intVal: 1},
		{in: "-7", isInt: true, intVal: -7},
		{in: "+5", isInt: true, intVal: 5},
		{in: "2147483647", isInt: true, intVal: 2147483647},
		{in: "-2147483648", isInt: true, intVal: -2147483648},
		{in: "2147483648"},
		{in: " 2"},
		{in: "0x10"},
		{in: "٣"},
		{in: "apple"},
		{in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok := ParseToken(tt.in)
			require.Equal(t, tt.in, tok.Raw)
			require.True(t, tok.Key.Valid())
			if tt.isInt {
				require.Equal(t, bloom.IntKey(tt.intVal), tok.Key)
			} else {
				require.Equal(t, bloom.TextKey(tt.in), tok.Key)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("1,apple,,-7,")
	require.Len(t, tokens, 4)
	require.Equal(t, bloom.IntKey(1), tokens[0].Key)
	require.Equal(t, bloom.TextKey("apple"), tokens[1].Key)
	require.Equal(t, bloom.TextKey(""), tokens[2].Key)
	require.Equal(t, bloom.IntKey(-7), tokens[3].Key)

	require.Empty(t, Tokenize(""))
	require.Empty(t, Tokenize(",,"))
	require.Len(t, Tokenize("a, b"), 2)
	require.Equal(t, " b", Tokenize("a, b")[1].Raw)
}

func TestLoadAndSearch(t *testing.T) {
	f, err := bloom.NewLocked(1000, 3)
	require.NoError(t, err)

	n, err := Load(context.Background(), f, strings.NewReader("1,2,3\napple\n\n65536,\n"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	var results []Result
	err = Search(context.Background(), f, strings.NewReader("1,999999\napple,banana\r\n65536"), func(r Result) {
		results = append(results, r)
	})
	require.NoError(t, err)

	var got []string
	for _, r := range results {
		got = append(got, r.Token.Raw)
	}
	require.Equal(t, []string{"1", "999999", "apple", "banana", "65536"}, got)
	require.True(t, results[0].Present)
	require.False(t, results[1].Present)
	require.True(t, results[2].Present)
	require.False(t, results[3].Present)
	require.True(t, results[4].Present)
}

type rejectingInserter struct {
	after int
	calls int
}

var errRejected = errors.New("rejected")

func (r *rejectingInserter) InsertAll(keys []bloom.Key) (int, error) {
	for i := range keys {
		if r.calls == r.after {
			return i, errRejected
		}
		r.calls++
	}
	return len(keys), nil
}

func TestLoadStopsOnRejectedKey(t *testing.T) {
	ins := &rejectingInserter{after: 3}
	n, err := Load(context.Background(), ins, strings.NewReader("a,b\nc,d,e\n"))
	require.ErrorIs(t, err, errRejected)
	require.ErrorContains(t, err, "line 2")
	require.ErrorContains(t, err, `"d"`)
	require.Equal(t, 3, n)
}

func TestLoadCancelled(t *testing.T) {
	f, _ := bloom.NewLocked(10, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, f, strings.NewReader("1\n2\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	addPath := filepath.Join(dir, "add.txt")
	searchPath := filepath.Join(dir, "search.txt")
	require.NoError(t, os.WriteFile(addPath, []byte("10,20,pear\n"), 0o600))
	require.NoError(t, os.WriteFile(searchPath, []byte("10,pear,30\n"), 0o600))

	l, err := bloom.NewLocked(1000, 3)
	require.NoError(t, err)
	n, err := LoadFile(context.Background(), l, addPath)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var out bytes.Buffer
	err = SearchFile(context.Background(), l, searchPath, func(r Result) {
		require.NoError(t, WriteResult(&out, r))
	})
	require.NoError(t, err)
	require.Equal(t, "Searching result for 10: true\nSearching result for pear: true\nSearching result for 30: false\n", out.String())

	_, err = LoadFile(context.Background(), l, filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
	err = SearchFile(context.Background(), l, filepath.Join(dir, "missing.txt"), func(Result) {})
	require.ErrorIs(t, err, os.ErrNotExist)
}
