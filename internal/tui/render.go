package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/setforbots/internal/card"
)

// symbols of the classic deck by shape, then shading.
var symbols = [3][3]string{
	{"◆", "◈", "◇"},
	{"●", "◍", "○"},
	{"■", "▣", "□"},
}

// renderCard draws a card: the classic deck as colour, count, shape and
// shading, any other universe as its feature digits in the first feature's
// colour.
func renderCard(u card.Universe, c card.Card) string {
	features := u.Features(c)
	if len(features) == 0 {
		return ErrorStyle.Render("??")
	}
	style := lipgloss.NewStyle().
		Foreground(featureColors[features[0]%len(featureColors)]).
		Bold(true)

	if u.FeatureSize == card.DefaultFeatureSize && u.FeatureCount == card.DefaultFeatureCount {
		count, shape, shading := features[1]+1, features[2], features[3]
		return style.Render(strings.Repeat(symbols[shape][shading], count))
	}
	return style.Render(u.Format(c))
}
