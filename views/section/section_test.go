package section

import (
	"errors"
	"fmt"
	"testing"

	"charm-dapp-wallet/panel"

	"github.com/stretchr/testify/assert"
)

func itoa(i int) string { return fmt.Sprintf("item-%d", i) }

func TestRenderPreviewHint(t *testing.T) {
	v := panel.View[int]{Items: []int{1, 2}, Total: 5, CanToggle: true, Loaded: true}
	out := Render(Options{Title: "Tokens"}, v, itoa)
	assert.Contains(t, out, "item-1")
	assert.Contains(t, out, "item-2")
	assert.NotContains(t, out, "item-3")
	assert.Contains(t, out, "show more (3 hidden)")

	v.Expanded = true
	out = Render(Options{Title: "Tokens"}, v, itoa)
	assert.Contains(t, out, "show less")
}

func TestRenderStates(t *testing.T) {
	out := Render(Options{Title: "NFTs", Spinner: "*"}, panel.View[int]{Loading: true}, itoa)
	assert.Contains(t, out, "* loading")

	out = Render(Options{Title: "NFTs"}, panel.View[int]{Loaded: true, Err: errors.New("rate limited")}, itoa)
	assert.Contains(t, out, "rate limited")

	out = Render(Options{Title: "NFTs", Empty: "No NFTs."}, panel.View[int]{Loaded: true}, itoa)
	assert.Contains(t, out, "No NFTs.")

	out = Render(Options{Title: "NFTs"}, panel.View[int]{}, itoa)
	assert.Contains(t, out, "Not loaded yet.")
}
