// SPDX-License-Identifier: Apache-2.0
package passphrase

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	keyringlib "github.com/zalando/go-keyring"
)

type promptRecorder struct {
	answer  string
	err     error
	calls   int
	confirm bool
}

func (p *promptRecorder) prompt(title string, confirm bool) (string, error) {
	p.calls++
	p.confirm = confirm
	return p.answer, p.err
}

func newTestResolver(source Source, flag, stdin string, piped, interactive bool, cache Cache, p *promptRecorder) *Resolver {
	r := NewResolver(source, flag, interactive, cache, p.prompt)
	r.stdin = strings.NewReader(stdin)
	r.piped = func() bool { return piped }
	return r
}

func TestGetResolutionOrder(t *testing.T) {
	keyringlib.MockInit()
	cache := NewOSCache()
	require.NoError(t, cache.Set("/keys", "cached"))

	tests := []struct {
		name        string
		flag        string
		env         string
		stdin       string
		piped       bool
		interactive bool
		cache       Cache
		want        string
		wantErr     error
		wantPrompt  bool
	}{
		{name: "flag wins", flag: "from-flag", env: "from-env", want: "from-flag"},
		{name: "env before stdin", env: "from-env", stdin: "from-stdin\n", piped: true, want: "from-env"},
		{name: "piped stdin", stdin: "  from-stdin \n", piped: true, cache: cache, want: "from-stdin"},
		{name: "cache before prompt", cache: cache, interactive: true, want: "cached"},
		{name: "prompt last", interactive: true, want: "typed", wantPrompt: true},
		{name: "empty pipe falls through", stdin: "", piped: true, interactive: true, want: "typed", wantPrompt: true},
		{name: "nothing available", wantErr: ErrNoPassphrase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPassphrase, tt.env)
			p := &promptRecorder{answer: "typed"}
			r := newTestResolver(SourceAuto, tt.flag, tt.stdin, tt.piped, tt.interactive, tt.cache, p)

			got, err := r.Get("/keys", "Passphrase")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompt, p.calls == 1)
		})
	}
}

func TestGetExplicitSources(t *testing.T) {
	t.Setenv(EnvPassphrase, "")
	p := &promptRecorder{answer: ""}

	_, err := newTestResolver(SourceEnv, "", "", false, true, nil, p).Get("a", "t")
	assert.Error(t, err)

	got, err := newTestResolver(SourceStdin, "", "line\nrest", false, false, nil, p).Get("a", "t")
	require.NoError(t, err)
	assert.Equal(t, "line", got)

	_, err = newTestResolver(SourceTUI, "", "", false, true, nil, p).Get("a", "t")
	assert.Error(t, err, "an empty TUI answer is rejected")

	p.err = errors.New("user aborted")
	_, err = newTestResolver(SourceTUI, "", "", false, true, nil, p).Get("a", "t")
	assert.ErrorContains(t, err, "user aborted")
}

func TestNewConfirmsInteractively(t *testing.T) {
	t.Setenv(EnvPassphrase, "")
	p := &promptRecorder{answer: "fresh"}

	got, err := newTestResolver(SourceAuto, "", "", false, true, nil, p).New("New passphrase")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.True(t, p.confirm)

	got, err = newTestResolver(SourceAuto, "", "", false, false, nil, p).New("New passphrase")
	require.NoError(t, err)
	assert.Equal(t, "", got, "non-interactive creation without a passphrase leaves the key unprotected")
}

func TestRememberAndForget(t *testing.T) {
	keyringlib.MockInit()
	cache := NewOSCache()
	p := &promptRecorder{}
	r := newTestResolver(SourceAuto, "", "", false, false, cache, p)

	r.Remember("/keys", "s3cret")
	got, err := cache.Get("/keys")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	r.Forget("/keys")
	_, err = cache.Get("/keys")
	assert.ErrorIs(t, err, ErrNotCached)

	// forgetting twice is fine
	r.Forget("/keys")
}

func TestParseSource(t *testing.T) {
	for input, want := range map[string]Source{"": SourceAuto, "AUTO": SourceAuto, "env": SourceEnv, "stdin": SourceStdin, "tui": SourceTUI} {
		got, err := ParseSource(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSource("clipboard")
	assert.Error(t, err)
}
