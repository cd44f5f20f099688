// SPDX-License-Identifier: Apache-2.0
package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		want string
	}{
		{
			name: "password first regardless of order",
			rec:  FromPairs("user", "bob", PasswordField, "s3cret", "url", "https://example.com"),
			want: "s3cret\nuser: bob\nurl: https://example.com\n",
		},
		{
			name: "missing password yields empty first line",
			rec:  FromPairs("user", "bob"),
			want: "\nuser: bob\n",
		},
		{
			name: "empty record",
			rec:  New(),
			want: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.rec))
		})
	}
}

func TestDecodeMalformedLineTolerance(t *testing.T) {
	rec, malformed := Decode("secret\nuser: bob\nBROKENLINE\nmail: a@b.c")

	want := FromPairs(PasswordField, "secret", "user", "bob", "mail", "a@b.c")
	assert.True(t, want.Equal(rec), "got %v", rec.Map())
	assert.Equal(t, []string{PasswordField, "user", "mail"}, rec.Keys())

	require.Len(t, malformed, 1)
	assert.Equal(t, 3, malformed[0].Line)
	assert.Equal(t, "BROKENLINE", malformed[0].Text)
	assert.True(t, errors.Is(malformed[0], ErrMalformedRecord))
}

func TestDecodeSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		value string
	}{
		{name: "colon space", input: "pw\nuser: bob", key: "user", value: "bob"},
		{name: "bare colon", input: "pw\nuser:bob", key: "user", value: "bob"},
		{name: "value keeps later separators", input: "pw\nurl: https://x.org: 8080", key: "url", value: "https://x.org: 8080"},
		{name: "bare colon value keeps colons", input: "pw\ntime:12:30", key: "time", value: "12:30"},
		{name: "colon space preferred over earlier bare colon", input: "pw\na:b: c", key: "a:b", value: "c"},
		{name: "empty value", input: "pw\nnote: ", key: "note", value: ""},
		{name: "crlf line ending", input: "pw\r\nuser: bob\r\n", key: "user", value: "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, malformed := Decode(tt.input)
			assert.Empty(t, malformed)
			assert.Equal(t, "pw", rec.Password())
			got, ok := rec.Get(tt.key)
			require.True(t, ok, "missing key %q in %v", tt.key, rec.Map())
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestDecodeFirstLineIsAlwaysPassword(t *testing.T) {
	rec, malformed := Decode("user: not-a-field\nkey: value\n")
	assert.Empty(t, malformed)
	assert.Equal(t, "user: not-a-field", rec.Password())
	assert.False(t, rec.Has("user"))

	rec, _ = Decode("")
	assert.Equal(t, "", rec.Password())
	assert.Equal(t, 1, rec.Len())
}

func TestRoundTrip(t *testing.T) {
	records := []*Record{
		FromPairs(PasswordField, "p1", "user", "u1"),
		FromPairs(PasswordField, "", "note", ""),
		FromPairs(PasswordField, "pa:ss: word", "url", "https://example.com:443/login", "pin", "1234"),
		FromPairs(PasswordField, "only"),
	}

	for _, rec := range records {
		decoded, malformed := Decode(Encode(rec))
		assert.Empty(t, malformed)
		assert.True(t, rec.Equal(decoded), "round trip changed %v into %v", rec.Map(), decoded.Map())
		assert.Equal(t, rec.Keys(), decoded.Keys())
	}
}
