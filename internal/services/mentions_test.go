package services

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func collectMentions(text string) []string {
	var out []string
	for username := range Mentions(text) {
		out = append(out, username)
	}
	return out
}

func TestMentionsExtractsUsernames(t *testing.T) {
	got := collectMentions("thanks @bob, and also @carol_99 for the tip")
	require.Equal(t, []string{"bob", "carol_99"}, got)
}

func TestMentionsKeepsDuplicates(t *testing.T) {
	got := collectMentions("@bob hi @bob @carol")
	require.Equal(t, []string{"bob", "bob", "carol"}, got)
}

func TestMentionsIgnoresBareAndTrailingAt(t *testing.T) {
	require.Empty(t, collectMentions("email me @ the office"))
	require.Empty(t, collectMentions("dangling @"))
	require.Empty(t, collectMentions("@, punctuation right after"))
}

func TestMentionsSkipsEscapedAt(t *testing.T) {
	got := collectMentions(`escaped \@bob but real @carol`)
	require.Equal(t, []string{"carol"}, got)
}

func TestMentionsStopsAtNonWordRune(t *testing.T) {
	got := collectMentions("ping @alice!")
	require.Equal(t, []string{"alice"}, got)
}

func TestMentionsUnicodeWordRunes(t *testing.T) {
	got := collectMentions("cc @ülrich and @安娜")
	require.Equal(t, []string{"ülrich", "安娜"}, got)
}

func TestMentionsSequenceIsRestartable(t *testing.T) {
	seq := Mentions("@bob @carol")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)
	require.Equal(t, []string{"bob", "carol"}, first)
}

func TestMentionsEarlyBreak(t *testing.T) {
	var got []string
	for username := range Mentions("@one @two @three") {
		got = append(got, username)
		if len(got) == 1 {
			break
		}
	}
	require.Equal(t, []string{"one"}, got)
}
