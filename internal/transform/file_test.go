package transform

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/validator"
)

func newFileTransformer() *FileTransformer {
	return NewFileTransformer(NewRowTransformer(validator.IsEmail, false), "flag")
}

func TestFileTransformer_Run(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		rows    int
		skipped int
	}{
		{
			name:    "drops blank and delimiter-only lines",
			in:      "name,email\nA,a@b.com\n,\nB,bad\n",
			want:    "name,email,flag\nA,a@b.com,true\nB,bad,false\n",
			rows:    2,
			skipped: 1,
		},
		{
			name: "flags any matching field",
			in:   "name,email\nJohn,john@example.com\nJane,jane.com\n",
			want: "name,email,flag\nJohn,john@example.com,true\nJane,jane.com,false\n",
			rows: 2,
		},
		{
			name: "delimiter-only header",
			in:   ",\nA,a@b.com\n",
			want: ",,flag\nA,a@b.com,true\n",
			rows: 1,
		},
		{
			name: "header only",
			in:   "name,email",
			want: "name,email,flag\n",
		},
		{
			name: "missing final newline",
			in:   "a,b\nx@y.org,1",
			want: "a,b,flag\nx@y.org,1,true\n",
			rows: 1,
		},
		{
			name:    "crlf line endings",
			in:      "a,b\r\n1,2\r\n\r\n3,c@d.net\r\n",
			want:    "a,b,flag\n1,2,false\n3,c@d.net,true\n",
			rows:    2,
			skipped: 1,
		},
		{
			name:    "whitespace-only lines",
			in:      "h\n   \n\t\nv\n",
			want:    "h,flag\nv,false\n",
			rows:    1,
			skipped: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := newFileTransformer().Run(context.Background(), strings.NewReader(tt.in), &out)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.rows, res.Rows)
			assert.Equal(t, tt.skipped, res.Skipped)
		})
	}
}

func TestFileTransformer_RowCountInvariant(t *testing.T) {
	in := "c1,c2,c3\n1,2,3\n\n4,5,6\n,,\n7,8,9\n"

	var out bytes.Buffer
	res, err := newFileTransformer().Run(context.Background(), strings.NewReader(in), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 1+res.Rows)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, "c1,c2,c3,flag", lines[0])
	for _, l := range lines {
		assert.Equal(t, 3, strings.Count(l, ","), "line %q", l)
	}
}

func TestFileTransformer_MissingHeader(t *testing.T) {
	for _, in := range []string{"", "\n", "   \nA,a@b.com\n", " \t\r\nx\n"} {
		var out bytes.Buffer
		_, err := newFileTransformer().Run(context.Background(), strings.NewReader(in), &out)

		assert.ErrorIs(t, err, domain.ErrMalformedInput, "input %q", in)
		assert.Empty(t, out.String())
	}
}

func TestFileTransformer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := newFileTransformer().Run(ctx, strings.NewReader("a\n1\n2\n"), &out)

	assert.ErrorIs(t, err, context.Canceled)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFileTransformer_WriteError(t *testing.T) {
	_, err := newFileTransformer().Run(context.Background(), strings.NewReader("a\n1\n"), failingWriter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.sent {
		return 0, errors.New("connection reset")
	}
	r.sent = true
	return copy(p, "a,b\n1,2\n"), nil
}

func TestFileTransformer_ReadError(t *testing.T) {
	var out bytes.Buffer
	_, err := newFileTransformer().Run(context.Background(), &failingReader{}, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
